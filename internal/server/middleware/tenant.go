package middleware

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// RequireTenant rejects requests whose actor is not bound to an office.
// Every tenant-scoped route sits behind it, after Auth.
func RequireTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			switch {
			case !ok:
				writeProblem(w, http.StatusUnauthorized, "authentication required")
				return
			case actor.TenantID == uuid.Nil:
				writeProblem(w, http.StatusForbidden, "profile is not linked to an office")
				return
			case !actor.Role.Valid():
				writeProblem(w, http.StatusForbidden, "unknown role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"title":%q,"status":%d,"detail":%q}`, http.StatusText(status), status, detail)
}
