package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"modhub/internal/models"
	"modhub/internal/store"
)

type identityContextKey struct{}

// identity is the resolved caller. User is nil for anonymous requests; Token
// keeps the raw bearer value so logout can expire a session that no longer
// resolves.
type identity struct {
	Token string
	User  *models.User
}

// IdentityMiddleware resolves the X-Authorization bearer token into a caller
// identity. A missing, unknown, or expired token yields an anonymous
// identity rather than a rejection; handlers decide via the authz policy
// whether anonymity is acceptable.
func IdentityMiddleware(resolver store.SessionResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}

		id := identity{Token: bearerToken(r.Header.Get("X-Authorization"))}
		if id.Token != "" {
			user, err := resolver.ResolveSession(r.Context(), id.Token)
			switch {
			case err == nil:
				id.User = &user
			case errors.Is(err, store.ErrSessionNotFound):
				// anonymous
			default:
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) identity {
	value := ctx.Value(identityContextKey{})
	if value == nil {
		return identity{}
	}
	id, ok := value.(identity)
	if !ok {
		return identity{}
	}
	return id
}

// bearerToken accepts both "Bearer <token>" and a bare token, matching what
// clients of the original endpoints send.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	if len(parts) == 1 && !strings.EqualFold(parts[0], "Bearer") {
		return parts[0]
	}
	return ""
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return true
	default:
		return r.Method == http.MethodOptions
	}
}
