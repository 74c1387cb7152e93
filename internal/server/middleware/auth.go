package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/gabinete/internal/auth"
)

type authOptions struct {
	queryToken bool
}

// AuthOption configures Auth.
type AuthOption func(*authOptions)

// WithQueryToken also reads the token from the "access_token" query
// parameter. Only websocket routes need it, since browsers cannot set
// headers on the upgrade request.
func WithQueryToken() AuthOption {
	return func(o *authOptions) {
		o.queryToken = true
	}
}

// Auth accepts access tokens from the Authorization header.
func Auth(jwtSecret string, opts ...AuthOption) func(http.Handler) http.Handler {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" && o.queryToken {
				tok = r.URL.Query().Get("access_token")
			}
			if tok != "" {
				ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret)
				if ok {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			writeProblem(w, http.StatusUnauthorized, "missing or invalid credentials")
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	actor, err := auth.ParseAccessToken(secret, tokenStr)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("auth: rejected token")
		return ctx, false
	}
	return WithActor(ctx, actor), true
}
