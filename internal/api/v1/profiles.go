package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/gabinete/internal/domain"
	"github.com/gosuda/gabinete/internal/storage"
)

type GetMeInput struct{}

type ProfileOutput struct {
	Body *domain.Profile
}

type UpdateMeInput struct {
	Body struct {
		Name       string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Phone      string `json:"phone,omitempty" maxLength:"32" doc:"Contact phone"`
		AvatarPath string `json:"avatar_path,omitempty" doc:"Object path of the avatar"`
	}
}

type ListProfilesInput struct {
	Role string `query:"role" enum:"citizen,aide,politician,admin" doc:"Only profiles with this role"`
}

type ListProfilesOutput struct {
	Body []*domain.Profile
}

type UpdateRoleInput struct {
	ID   uuid.UUID `path:"id" doc:"Profile ID"`
	Body struct {
		Role domain.Role `json:"role" enum:"citizen,aide,politician,admin" doc:"New role"`
	}
}

type DeactivateProfileInput struct {
	ID uuid.UUID `path:"id" doc:"Profile ID"`
}

type DeactivateProfileOutput struct{}

// checkObjectPath accepts an empty path or one under the actor's tenant.
func checkObjectPath(actor domain.Actor, field, objectPath string) error {
	if objectPath == "" || storage.BelongsTo(actor.TenantID, objectPath) {
		return nil
	}
	return domain.Invalid(field, "invalid_path", "file does not belong to this office")
}

func RegisterProfileRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Get the caller's profile",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, _ *GetMeInput) (*ProfileOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		p, err := store.Profiles().GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, problem(ctx, err, "profiles.me")
		}
		return &ProfileOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-me",
		Method:      http.MethodPut,
		Path:        "/me",
		Summary:     "Update the caller's profile",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *UpdateMeInput) (*ProfileOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if err := checkObjectPath(actor, "avatar_path", input.Body.AvatarPath); err != nil {
			return nil, problem(ctx, err, "profiles.update_me")
		}

		p, err := store.Profiles().GetByID(ctx, actor.UserID)
		if err != nil {
			return nil, problem(ctx, err, "profiles.update_me")
		}

		p.Name = strings.TrimSpace(input.Body.Name)
		if p.Name == "" {
			return nil, problem(ctx, domain.Invalid("name", "required", "name is required"), "profiles.update_me")
		}
		p.Phone = strings.TrimSpace(input.Body.Phone)
		p.AvatarPath = input.Body.AvatarPath
		p.UpdatedAt = time.Now().UTC()

		if err := store.Profiles().Update(ctx, p); err != nil {
			return nil, problem(ctx, err, "profiles.update_me")
		}
		return &ProfileOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        "/profiles",
		Summary:     "List the office's profiles",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *ListProfilesInput) (*ListProfilesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if !actor.Role.IsStaff() {
			return nil, huma.Error403Forbidden("staff role required")
		}

		profiles, err := store.Profiles().ListByTenant(ctx, actor.TenantID, domain.Role(input.Role))
		if err != nil {
			return nil, problem(ctx, err, "profiles.list")
		}
		if profiles == nil {
			profiles = []*domain.Profile{}
		}
		return &ListProfilesOutput{Body: profiles}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile-role",
		Method:      http.MethodPatch,
		Path:        "/profiles/{id}/role",
		Summary:     "Change a profile's role",
		Tags:        []string{"Profiles"},
	}, func(ctx context.Context, input *UpdateRoleInput) (*ProfileOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if !actor.Role.CanManageProfiles() {
			return nil, huma.Error403Forbidden("only the politician or an admin may change roles")
		}
		if input.ID == actor.UserID {
			return nil, problem(ctx, domain.Invalid("id", "self_change", "you cannot change your own role"), "profiles.role")
		}
		if !input.Body.Role.Valid() {
			return nil, problem(ctx, domain.Invalid("role", "invalid_role", "unknown role"), "profiles.role")
		}

		if err := store.Profiles().UpdateRole(ctx, actor.TenantID, input.ID, input.Body.Role); err != nil {
			return nil, problem(ctx, err, "profiles.role")
		}

		p, err := store.Profiles().GetByID(ctx, input.ID)
		if err != nil {
			return nil, problem(ctx, err, "profiles.role")
		}
		return &ProfileOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "deactivate-profile",
		Method:        http.MethodPost,
		Path:          "/profiles/{id}/deactivate",
		Summary:       "Deactivate a profile",
		Tags:          []string{"Profiles"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeactivateProfileInput) (*DeactivateProfileOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}
		if !actor.Role.CanManageProfiles() {
			return nil, huma.Error403Forbidden("only the politician or an admin may deactivate profiles")
		}
		if input.ID == actor.UserID {
			return nil, problem(ctx, domain.Invalid("id", "self_change", "you cannot deactivate yourself"), "profiles.deactivate")
		}

		if err := store.Profiles().Deactivate(ctx, actor.TenantID, input.ID); err != nil {
			return nil, problem(ctx, err, "profiles.deactivate")
		}
		return &DeactivateProfileOutput{}, nil
	})
}
