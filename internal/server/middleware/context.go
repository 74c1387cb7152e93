package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
)

type contextKey string

const (
	ContextKeyTenantID contextKey = "tenant_id"
	ContextKeyUserID   contextKey = "user_id"
	ContextKeyUserRole contextKey = "role"
)

func TenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyTenantID).(uuid.UUID)
	return v, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	v, ok := ctx.Value(ContextKeyUserRole).(domain.Role)
	return v, ok
}

// ActorFromContext assembles the caller placed in ctx by Auth. The tenant
// is uuid.Nil for profiles not linked to an office.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := RoleFromContext(ctx)
	tenantID, _ := TenantIDFromContext(ctx)
	return domain.Actor{TenantID: tenantID, UserID: userID, Role: role}, true
}

// WithActor stores an actor in ctx the same way Auth does.
func WithActor(ctx context.Context, a domain.Actor) context.Context {
	if a.TenantID != uuid.Nil {
		ctx = context.WithValue(ctx, ContextKeyTenantID, a.TenantID)
	}
	ctx = context.WithValue(ctx, ContextKeyUserID, a.UserID)
	return context.WithValue(ctx, ContextKeyUserRole, a.Role)
}
