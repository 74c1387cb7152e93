package middleware

import (
	"net/http"

	"github.com/gosuda/gabinete/internal/domain"
)

// RequireCapability returns middleware that lets a request through when
// the authenticated role passes check. It must be chained after Auth.
//
// Returns 401 Unauthorized when no role is found in context and 403
// Forbidden when the role lacks the capability.
func RequireCapability(check func(domain.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok || role == "" {
				writeProblem(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !check(role) {
				writeProblem(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits exactly the listed roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return RequireCapability(func(r domain.Role) bool {
		_, ok := allowed[r]
		return ok
	})
}

// RequireStaff admits aides, politicians and admins.
func RequireStaff() func(http.Handler) http.Handler {
	return RequireCapability(domain.Role.IsStaff)
}
