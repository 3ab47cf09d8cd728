package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
)

type contextKey string

const (
	// SessionKey is the key for the authenticated session in the request context
	SessionKey contextKey = "session"
	// GrantKey is the key for the administrator grant in the request context
	GrantKey contextKey = "adminGrant"

	authCookieName = "auth_token"
	bearerSchema   = "Bearer "
)

// Authenticator resolves a session token into a session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// AdminAuthorizer checks that a session may run administrator operations
type AdminAuthorizer interface {
	AuthorizeAdmin(session *models.Session) (models.AdminGrant, error)
}

// AuthMiddleware creates middleware that checks if the user is authenticated
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.Authenticate(r.Context(), extractToken(r))
			if err != nil {
				writeDenied(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects sessions without the administrator role. It must run
// after AuthMiddleware.
func RequireAdmin(authz AdminAuthorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := SessionFrom(r.Context())
			grant, err := authz.AuthorizeAdmin(session)
			if err != nil {
				writeDenied(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), GrantKey, grant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from Authorization header or cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, bearerSchema) {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, bearerSchema))
	}

	cookie, err := r.Cookie(authCookieName)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// SetAuthCookie sets authentication cookie
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// SessionFrom extracts the authenticated session from the context
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*models.Session)
	return session, ok && session != nil
}

// GrantFrom extracts the administrator grant from the context
func GrantFrom(ctx context.Context) (models.AdminGrant, bool) {
	grant, ok := ctx.Value(GrantKey).(models.AdminGrant)
	return grant, ok
}

func writeDenied(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	message := "unauthorized"
	switch {
	case errors.Is(err, models.ErrAuthorization):
		status = http.StatusForbidden
		message = "administrator role required"
	case errors.Is(err, models.ErrAuthentication):
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
