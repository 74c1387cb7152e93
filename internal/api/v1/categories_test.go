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

func TestListCategories(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	tests := []struct {
		name       string
		ctx        context.Context
		query      string
		activeOnly bool
	}{
		{"citizen_default", tenantCtx(tenantID), "", true},
		{"citizen_cannot_include_inactive", tenantCtx(tenantID), "?include_inactive=true", true},
		{"aide_default", aideCtx(tenantID), "", true},
		{"aide_include_inactive", aideCtx(tenantID), "?include_inactive=true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{
				listFunc: func(_ context.Context, tid uuid.UUID, activeOnly bool) ([]*domain.Category, error) {
					assert.Equal(t, tenantID, tid)
					assert.Equal(t, tt.activeOnly, activeOnly)
					return nil, nil
				},
			}})

			resp := api.GetCtx(tt.ctx, "/categories"+tt.query)
			require.Equal(t, http.StatusOK, resp.Code)
			assert.JSONEq(t, `[]`, resp.Body.String())
		})
	}
}

func TestCreateCategory(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	t.Run("defaults_active", func(t *testing.T) {
		t.Parallel()

		var created *domain.Category
		_, api := humatest.New(t)
		v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{
			createFunc: func(_ context.Context, c *domain.Category) error {
				created = c
				return nil
			},
		}})

		resp := api.PostCtx(aideCtx(tenantID), "/categories", map[string]any{"name": "Iluminação", "color": "#ffcc00"})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		require.NotNil(t, created)
		assert.Equal(t, tenantID, created.TenantID)
		assert.True(t, created.Active)

		var out domain.Category
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "Iluminação", out.Name)
	})

	t.Run("citizen_forbidden", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{}})

		resp := api.PostCtx(tenantCtx(tenantID), "/categories", map[string]any{"name": "Buracos"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("invalid_color", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{}})

		resp := api.PostCtx(aideCtx(tenantID), "/categories", map[string]any{"name": "Buracos", "color": "red"})
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "invalid_color", errorCode(t, resp))
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	id := uuid.New()

	var updated *domain.Category
	_, api := humatest.New(t)
	v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{
		getByIDFunc: func(_ context.Context, _, got uuid.UUID) (*domain.Category, error) {
			return &domain.Category{ID: got, TenantID: tenantID, Name: "Old", Active: true}, nil
		},
		updateFunc: func(_ context.Context, c *domain.Category) error {
			updated = c
			return nil
		},
	}})

	resp := api.PutCtx(adminCtx(tenantID), "/categories/"+id.String(), map[string]any{"name": "Saneamento", "active": false})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NotNil(t, updated)
	assert.Equal(t, "Saneamento", updated.Name)
	assert.False(t, updated.Active)
}

func TestDeleteCategory(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	used := uuid.New()
	unused := uuid.New()

	_, api := humatest.New(t)
	v1.RegisterCategoryRoutes(api, &mockDataStore{categories: &mockCategoryRepo{
		deleteFunc: func(_ context.Context, _, id uuid.UUID) error {
			if id == used {
				return fmt.Errorf("categoryRepo.Delete: %w", domain.ErrInUse)
			}
			return nil
		},
	}})

	resp := api.DeleteCtx(aideCtx(tenantID), "/categories/"+used.String())
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "in_use", errorCode(t, resp))

	resp = api.DeleteCtx(aideCtx(tenantID), "/categories/"+unused.String())
	assert.Equal(t, http.StatusNoContent, resp.Code)
}
