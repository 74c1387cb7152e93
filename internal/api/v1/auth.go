package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/gabinete/internal/auth"
	"github.com/gosuda/gabinete/internal/domain"
)

// Session is the body returned by signup and login.
type Session struct {
	Profile      *domain.Profile `json:"profile"`
	TokenType    string          `json:"token_type" example:"Bearer"`
	AccessToken  string          `json:"access_token"`  //nolint:gosec // G117: auth response DTO
	RefreshToken string          `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
}

func newSession(tokens *auth.Tokens, p *domain.Profile) Session {
	return Session{
		Profile:      p,
		TokenType:    "Bearer",
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

type RegisterInput struct {
	Body struct {
		TenantSlug string `json:"tenant_slug" minLength:"1" maxLength:"63" doc:"Office slug"`
		Email      string `json:"email" minLength:"3" maxLength:"255" doc:"Login email"`
		Password   string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name       string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Login email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type SessionOutput struct {
	Body Session
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		TokenType   string `json:"token_type" example:"Bearer"`
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

// authProblem maps credential failures onto 401/409 and leaves the rest
// to the shared translation.
func authProblem(ctx context.Context, err error, origin string) error {
	switch {
	case errors.Is(err, auth.ErrUserAlreadyExists):
		return huma.Error409Conflict("email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
		return huma.Error401Unauthorized("invalid or expired refresh token")
	default:
		return problem(ctx, err, origin)
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Sign a citizen up to an office",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*SessionOutput, error) {
		if _, err := authSvc.Register(ctx, input.Body.TenantSlug, input.Body.Email, input.Body.Password, input.Body.Name); err != nil {
			return nil, authProblem(ctx, err, "auth.register")
		}

		tokens, profile, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue tokens", err)
		}
		return &SessionOutput{Body: newSession(tokens, profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
		tokens, profile, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, authProblem(ctx, err, "auth.login")
		}
		return &SessionOutput{Body: newSession(tokens, profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Exchange a refresh token for a new access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, authProblem(ctx, err, "auth.refresh")
		}

		out := &RefreshOutput{}
		out.Body.TokenType = "Bearer"
		out.Body.AccessToken = accessToken
		return out, nil
	})
}
