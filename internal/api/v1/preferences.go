package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type GetPreferencesInput struct{}

type GetPreferencesOutput struct {
	Body map[string]bool
}

type TogglePreferenceInput struct {
	Key string `path:"key" pattern:"^[a-z][a-z0-9_]{0,63}$" doc:"Preference key"`
}

type TogglePreferenceOutput struct {
	Body struct {
		Key   string `json:"key"`
		Value bool   `json:"value"`
	}
}

func RegisterPreferenceRoutes(api huma.API, prefs PreferenceStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-preferences",
		Method:      http.MethodGet,
		Path:        "/preferences",
		Summary:     "Get the caller's UI preferences",
		Tags:        []string{"Preferences"},
	}, func(ctx context.Context, _ *GetPreferencesInput) (*GetPreferencesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		values, err := prefs.Get(ctx, actor.UserID)
		if err != nil {
			return nil, problem(ctx, err, "preferences.get")
		}
		return &GetPreferencesOutput{Body: values}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-preference",
		Method:      http.MethodPost,
		Path:        "/preferences/{key}/toggle",
		Summary:     "Flip a boolean preference",
		Description: "Other open sessions receive the change on /ws/preferences.",
		Tags:        []string{"Preferences"},
	}, func(ctx context.Context, input *TogglePreferenceInput) (*TogglePreferenceOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, err
		}

		value, err := prefs.Toggle(ctx, actor.UserID, input.Key)
		if err != nil {
			return nil, problem(ctx, err, "preferences.toggle")
		}

		out := &TogglePreferenceOutput{}
		out.Body.Key = input.Key
		out.Body.Value = value
		return out, nil
	})
}
