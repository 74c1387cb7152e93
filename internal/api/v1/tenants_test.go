package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/gabinete/internal/api/v1"
	"github.com/gosuda/gabinete/internal/domain"
)

func TestGetPublicTenant(t *testing.T) {
	t.Parallel()

	active := &domain.Tenant{ID: uuid.New(), Slug: "vereadora-ana", Name: "Gabinete Ana", PrimaryColor: "#fff", Active: true}
	inactive := &domain.Tenant{ID: uuid.New(), Slug: "antigo", Name: "Antigo", Active: false}

	tenants := &mockTenantRepo{
		getBySlugFunc: func(_ context.Context, slug string) (*domain.Tenant, error) {
			switch slug {
			case active.Slug:
				return active, nil
			case inactive.Slug:
				return inactive, nil
			}
			return nil, fmt.Errorf("tenantRepo.GetBySlug: %w", domain.ErrNotFound)
		},
	}

	tests := []struct {
		name string
		slug string
		code int
	}{
		{"active", active.Slug, http.StatusOK},
		{"inactive_hidden", inactive.Slug, http.StatusNotFound},
		{"unknown", "ninguem", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			v1.RegisterPublicRoutes(api, &mockDataStore{tenants: tenants})

			resp := api.Get("/public/tenants/" + tt.slug)
			require.Equal(t, tt.code, resp.Code)
			if tt.code != http.StatusOK {
				return
			}

			var page v1.TenantPage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
			assert.Equal(t, "Gabinete Ana", page.Tenant.Name)
			assert.Equal(t, "#ffffff", page.Theme.Primary)
			assert.Equal(t, "#000000", page.Theme.OnPrimary)
			assert.Equal(t, domain.DefaultSecondaryColor, page.Theme.Secondary)
		})
	}
}

func TestListPublicEvents(t *testing.T) {
	t.Parallel()

	tenant := &domain.Tenant{ID: uuid.New(), Slug: "gabinete", Active: true}

	_, api := humatest.New(t)
	v1.RegisterPublicRoutes(api, &mockDataStore{
		tenants: &mockTenantRepo{
			getBySlugFunc: func(context.Context, string) (*domain.Tenant, error) { return tenant, nil },
		},
		events: &mockEventRepo{
			listFunc: func(_ context.Context, f domain.EventFilter) ([]*domain.Event, error) {
				assert.Equal(t, tenant.ID, f.TenantID)
				assert.True(t, f.PublishedOnly, "anonymous visitors only see published events")
				assert.NotNil(t, f.From)
				return []*domain.Event{{ID: uuid.New(), Title: "Audiência pública", Published: true}}, nil
			},
		},
	})

	resp := api.Get("/public/tenants/gabinete/events")
	require.Equal(t, http.StatusOK, resp.Code)

	var events []*domain.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, "Audiência pública", events[0].Title)
}

func TestUpdateTenant(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	newRepo := func(updated *domain.Tenant) *mockTenantRepo {
		return &mockTenantRepo{
			getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
				return &domain.Tenant{
					ID:             id,
					Slug:           "gabinete",
					Name:           "Old",
					PrimaryColor:   "#123456",
					SecondaryColor: "#abcdef",
					LogoPath:       id.String() + "/branding/old.png",
					Contact:        domain.Contact{Email: "contato@gabinete.org"},
					Active:         true,
				}, nil
			},
			updateFunc: func(_ context.Context, tn *domain.Tenant) error {
				*updated = *tn
				return nil
			},
		}
	}

	tests := []struct {
		name   string
		role   domain.Role
		body   map[string]any
		status int
		code   string
		check  func(t *testing.T, updated domain.Tenant)
	}{
		{
			name:   "politician_updates",
			role:   domain.RolePolitician,
			body:   map[string]any{"name": " Gabinete Novo ", "primary_color": "#0a0", "logo_path": tenantID.String() + "/branding/logo.png"},
			status: http.StatusOK,
			check: func(t *testing.T, updated domain.Tenant) {
				t.Helper()
				assert.Equal(t, "#0a0", updated.PrimaryColor)
				assert.Equal(t, "#00aa00", updated.Theme().Primary)
				assert.Equal(t, tenantID.String()+"/branding/logo.png", updated.LogoPath)
			},
		},
		{
			name:   "omitted_fields_kept",
			role:   domain.RoleAdmin,
			body:   map[string]any{"name": "Gabinete Novo"},
			status: http.StatusOK,
			check: func(t *testing.T, updated domain.Tenant) {
				t.Helper()
				assert.Equal(t, "#123456", updated.PrimaryColor)
				assert.Equal(t, "#abcdef", updated.SecondaryColor)
				assert.Equal(t, tenantID.String()+"/branding/old.png", updated.LogoPath)
				assert.Equal(t, "contato@gabinete.org", updated.Contact.Email)
			},
		},
		{
			name:   "contact_replaced",
			role:   domain.RolePolitician,
			body:   map[string]any{"name": "Gabinete Novo", "contact": map[string]any{"phone": "+55 11 3333-4444"}},
			status: http.StatusOK,
			check: func(t *testing.T, updated domain.Tenant) {
				t.Helper()
				assert.Equal(t, domain.Contact{Phone: "+55 11 3333-4444"}, updated.Contact)
				assert.Equal(t, "#123456", updated.PrimaryColor)
			},
		},
		{
			name:   "aide_forbidden",
			role:   domain.RoleAide,
			body:   map[string]any{"name": "X"},
			status: http.StatusForbidden,
		},
		{
			name:   "invalid_color",
			role:   domain.RoleAdmin,
			body:   map[string]any{"name": "X", "secondary_color": "blue"},
			status: http.StatusBadRequest,
			code:   "invalid_color",
		},
		{
			name:   "foreign_logo",
			role:   domain.RoleAdmin,
			body:   map[string]any{"name": "X", "logo_path": uuid.New().String() + "/branding/logo.png"},
			status: http.StatusBadRequest,
			code:   "invalid_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var updated domain.Tenant
			_, api := humatest.New(t)
			v1.RegisterTenantRoutes(api, &mockDataStore{tenants: newRepo(&updated)})

			ctx := actorCtx(domain.Actor{TenantID: tenantID, UserID: uuid.New(), Role: tt.role})
			resp := api.PutCtx(ctx, "/tenant", tt.body)
			require.Equal(t, tt.status, resp.Code, resp.Body.String())

			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, resp))
			}
			if tt.status == http.StatusOK {
				assert.Equal(t, "Gabinete Novo", updated.Name)
				tt.check(t, updated)

				var page v1.TenantPage
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
				assert.Equal(t, updated.Theme().Primary, page.Theme.Primary)
			}
		})
	}
}
