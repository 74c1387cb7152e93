package v1

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/apperr"
	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/server/middleware"
)

// problem translates err into a huma status error. The first error detail
// carries the machine code, located at the offending field when known.
func problem(ctx context.Context, err error, origin string) error {
	ae := apperr.Translate(ctx, err, origin)

	detail := &huma.ErrorDetail{Message: ae.Code}
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		detail.Location = "body." + fe.Field
	}
	return huma.NewError(ae.Status(), ae.Message, detail)
}

// actorFrom reads the authenticated caller. Every operation behind
// RequireTenant has both a user and a tenant.
func actorFrom(ctx context.Context) (domain.Actor, error) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, huma.Error401Unauthorized("authentication required")
	}
	if actor.TenantID == uuid.Nil {
		return domain.Actor{}, huma.Error403Forbidden("missing tenant context")
	}
	return actor, nil
}
