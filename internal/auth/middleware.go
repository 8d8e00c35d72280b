// internal/auth/middleware.go
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gymreach/outreach-backend/internal/model"
	"github.com/gymreach/outreach-backend/internal/repository"
)

// UserContext is the verified caller identity scoped to a gym.
type UserContext struct {
	UserID string
	GymID  string
	Email  string
	Role   string
}

type ctxKey int

const userContextKey ctxKey = 0

func FromContext(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(UserContext)
	return user, ok
}

func WithUserContext(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireUser verifies the bearer token, resolves the caller's gym via the
// profiles table, and stores the UserContext on the request. Admins may act
// on another gym through X-Target-Gym-ID (asserted trust, as in the original
// design; the override is not independently re-validated).
func RequireUser(verifier Verifier, profiles repository.ProfileRepositoryInterface, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "invalid Authorization header, expected 'Bearer <token>'", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warnw("auth failed", "error", err)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}

			profile, err := profiles.GetByUserID(r.Context(), identity.UserID)
			if err != nil {
				logger.Errorw("profile lookup failed", "user_id", identity.UserID, "error", err)
				http.Error(w, "authentication failed", http.StatusUnauthorized)
				return
			}
			if profile == nil {
				http.Error(w, "user has no associated gym profile", http.StatusForbidden)
				return
			}

			user := UserContext{
				UserID: identity.UserID,
				GymID:  profile.GymID,
				Email:  identity.Email,
				Role:   profile.Role,
			}
			if target := r.Header.Get("X-Target-Gym-ID"); target != "" && profile.Role == model.RoleAdmin {
				user.GymID = target
			}

			next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
		})
	}
}

// RequireAPIKey guards machine-to-machine endpoints with a shared secret.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
