package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/services"
	"github.com/unrolled/render"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom pulls the authenticated identity out of the request context.
// The second return is false on unauthenticated requests.
func IdentityFrom(ctx context.Context) (services.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(services.Identity)
	return identity, ok
}

type AuthMiddleware struct {
	render *render.Render
	auth   *services.AuthService
}

func NewAuthMiddleware(r *render.Render, auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{render: r, auth: auth}
}

func (m *AuthMiddleware) identity(r *http.Request) (services.Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return services.Identity{}, false
	}

	claims, err := m.auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return services.Identity{}, false
	}

	return services.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, true
}

// Optional attaches the identity when a valid token is present and lets the
// request through either way.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := m.identity(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, identity))
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a valid bearer token.
func (m *AuthMiddleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.identity(r)
		if !ok {
			_ = m.render.JSON(w, http.StatusUnauthorized, map[string]string{
				"code":    "INVALID_TOKEN",
				"message": "missing or invalid bearer token",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// AdminOnly additionally requires the ADMIN role.
func (m *AuthMiddleware) AdminOnly(next http.Handler) http.Handler {
	return m.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFrom(r.Context())
		if identity.Role != models.RoleAdmin {
			_ = m.render.JSON(w, http.StatusForbidden, map[string]string{
				"code":    "FORBIDDEN",
				"message": "admin role required",
			})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
