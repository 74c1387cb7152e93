package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/gabinete/internal/domain"
)

// TenantPage is an office with the colors its pages render with.
type TenantPage struct {
	Tenant *domain.Tenant `json:"tenant"`
	Theme  domain.Theme   `json:"theme"`
}

type GetPublicTenantInput struct {
	Slug string `path:"slug" minLength:"1" maxLength:"63" doc:"Office slug"`
}

type GetTenantOutput struct {
	Body *TenantPage
}

type ListPublicEventsInput struct {
	Slug   string `path:"slug" minLength:"1" maxLength:"63" doc:"Office slug"`
	Limit  int    `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset int    `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListEventsOutput struct {
	Body []*domain.Event
}

type GetTenantInput struct{}

// UpdateTenantInput changes office settings. Omitted or empty optional
// fields keep their stored value.
type UpdateTenantInput struct {
	Body struct {
		Name           string          `json:"name" minLength:"1" maxLength:"255" doc:"Office name"`
		PrimaryColor   string          `json:"primary_color,omitempty" required:"false" doc:"Hex color (#rgb or #rrggbb)"`
		SecondaryColor string          `json:"secondary_color,omitempty" required:"false" doc:"Hex color (#rgb or #rrggbb)"`
		LogoPath       string          `json:"logo_path,omitempty" required:"false" doc:"Object path of the logo"`
		Contact        *domain.Contact `json:"contact,omitempty" required:"false" doc:"Public contact block, replaced as a whole"`
	}
}

// publicTenant resolves an active office by slug. Inactive offices are
// reported as missing.
func publicTenant(ctx context.Context, store DataStore, slug string) (*domain.Tenant, error) {
	t, err := store.Tenants().GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("office not found")
		}
		return nil, problem(ctx, err, "tenants.public")
	}
	if !t.Active {
		return nil, huma.Error404NotFound("office not found")
	}
	return t, nil
}

// RegisterPublicRoutes registers the unauthenticated office pages.
func RegisterPublicRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-public-tenant",
		Method:      http.MethodGet,
		Path:        "/public/tenants/{slug}",
		Summary:     "Get an office and its theme",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *GetPublicTenantInput) (*GetTenantOutput, error) {
		t, err := publicTenant(ctx, store, input.Slug)
		if err != nil {
			return nil, err
		}
		return &GetTenantOutput{Body: &TenantPage{Tenant: t, Theme: t.Theme()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-public-events",
		Method:      http.MethodGet,
		Path:        "/public/tenants/{slug}/events",
		Summary:     "List an office's published upcoming events",
		Tags:        []string{"Public"},
	}, func(ctx context.Context, input *ListPublicEventsInput) (*ListEventsOutput, error) {
		t, err := publicTenant(ctx, store, input.Slug)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		events, err := store.Events().List(ctx, domain.EventFilter{
			TenantID:      t.ID,
			PublishedOnly: true,
			From:          &now,
			Limit:         input.Limit,
			Offset:        input.Offset,
		})
		if err != nil {
			return nil, problem(ctx, err, "events.public")
		}
		if events == nil {
			events = []*domain.Event{}
		}
		return &ListEventsOutput{Body: events}, nil
	})
}

func RegisterTenantRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/tenant",
		Summary:     "Get the caller's office",
		Tags:        []string{"Tenant"},
	}, func(ctx context.Context, _ *GetTenantInput) (*GetTenantOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, actor.TenantID)
		if err != nil {
			return nil, problem(ctx, err, "tenants.get")
		}
		return &GetTenantOutput{Body: &TenantPage{Tenant: t, Theme: t.Theme()}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPut,
		Path:        "/tenant",
		Summary:     "Update office settings",
		Tags:        []string{"Tenant"},
	}, func(ctx context.Context, input *UpdateTenantInput) (*GetTenantOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if !actor.Role.CanManageOffice() {
			return nil, huma.Error403Forbidden("only the politician or an admin may change office settings")
		}

		t, err := store.Tenants().GetByID(ctx, actor.TenantID)
		if err != nil {
			return nil, problem(ctx, err, "tenants.update")
		}

		for field, color := range map[string]string{
			"primary_color":   input.Body.PrimaryColor,
			"secondary_color": input.Body.SecondaryColor,
		} {
			if color != "" && !domain.ValidHexColor(color) {
				return nil, problem(ctx, domain.Invalid(field, "invalid_color", "color must be a hex value"), "tenants.update")
			}
		}
		if err := checkObjectPath(actor, "logo_path", input.Body.LogoPath); err != nil {
			return nil, problem(ctx, err, "tenants.update")
		}

		t.Name = strings.TrimSpace(input.Body.Name)
		if input.Body.PrimaryColor != "" {
			t.PrimaryColor = input.Body.PrimaryColor
		}
		if input.Body.SecondaryColor != "" {
			t.SecondaryColor = input.Body.SecondaryColor
		}
		if input.Body.LogoPath != "" {
			t.LogoPath = input.Body.LogoPath
		}
		if input.Body.Contact != nil {
			t.Contact = *input.Body.Contact
		}
		t.UpdatedAt = time.Now().UTC()

		if err := store.Tenants().Update(ctx, t); err != nil {
			return nil, problem(ctx, err, "tenants.update")
		}
		return &GetTenantOutput{Body: &TenantPage{Tenant: t, Theme: t.Theme()}}, nil
	})
}
