package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
)

type CategoryBody struct {
	Name      string `json:"name" minLength:"1" maxLength:"100" doc:"Category name"`
	Color     string `json:"color,omitempty" doc:"Hex color"`
	Icon      string `json:"icon,omitempty" maxLength:"64" doc:"Icon name"`
	SortOrder int    `json:"sort_order,omitempty" doc:"Position in lists"`
	Active    *bool  `json:"active,omitempty" doc:"Offered to citizens (default true)"`
}

type ListCategoriesInput struct {
	IncludeInactive bool `query:"include_inactive" doc:"Staff only: include inactive categories"`
}

type ListCategoriesOutput struct {
	Body []*domain.Category
}

type CreateCategoryInput struct {
	Body CategoryBody
}

type UpdateCategoryInput struct {
	ID   uuid.UUID `path:"id" doc:"Category ID"`
	Body CategoryBody
}

type CategoryOutput struct {
	Body *domain.Category
}

type DeleteCategoryInput struct {
	ID uuid.UUID `path:"id" doc:"Category ID"`
}

type DeleteCategoryOutput struct{}

func (b CategoryBody) apply(c *domain.Category) {
	c.Name = b.Name
	c.Color = b.Color
	c.Icon = b.Icon
	c.SortOrder = b.SortOrder
	c.Active = b.Active == nil || *b.Active
}

func categoryManager(ctx context.Context) (domain.Actor, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return actor, err
	}
	if !actor.Role.CanManageCategories() {
		return actor, huma.Error403Forbidden("staff role required")
	}
	return actor, nil
}

func RegisterCategoryRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/categories",
		Summary:     "List ticket categories",
		Tags:        []string{"Categories"},
	}, func(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		activeOnly := !input.IncludeInactive || !actor.Role.CanManageCategories()
		categories, err := store.Categories().List(ctx, actor.TenantID, activeOnly)
		if err != nil {
			return nil, problem(ctx, err, "categories.list")
		}
		if categories == nil {
			categories = []*domain.Category{}
		}
		return &ListCategoriesOutput{Body: categories}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-category",
		Method:      http.MethodPost,
		Path:        "/categories",
		Summary:     "Create a ticket category",
		Tags:        []string{"Categories"},
	}, func(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
		actor, err := categoryManager(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		c := &domain.Category{ID: uuid.New(), TenantID: actor.TenantID, CreatedAt: now, UpdatedAt: now}
		input.Body.apply(c)
		if err := c.Validate(); err != nil {
			return nil, problem(ctx, err, "categories.create")
		}

		if err := store.Categories().Create(ctx, c); err != nil {
			return nil, problem(ctx, err, "categories.create")
		}
		return &CategoryOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPut,
		Path:        "/categories/{id}",
		Summary:     "Update a ticket category",
		Tags:        []string{"Categories"},
	}, func(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
		actor, err := categoryManager(ctx)
		if err != nil {
			return nil, err
		}

		c, err := store.Categories().GetByID(ctx, actor.TenantID, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "categories.update")
		}
		input.Body.apply(c)
		if err := c.Validate(); err != nil {
			return nil, problem(ctx, err, "categories.update")
		}
		c.UpdatedAt = time.Now().UTC()

		if err := store.Categories().Update(ctx, c); err != nil {
			return nil, problem(ctx, err, "categories.update")
		}
		return &CategoryOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-category",
		Method:        http.MethodDelete,
		Path:          "/categories/{id}",
		Summary:       "Delete an unused ticket category",
		Tags:          []string{"Categories"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteCategoryInput) (*DeleteCategoryOutput, error) {
		actor, err := categoryManager(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Categories().Delete(ctx, actor.TenantID, input.ID); err != nil {
			return nil, problem(ctx, err, "categories.delete")
		}
		return &DeleteCategoryOutput{}, nil
	})
}
