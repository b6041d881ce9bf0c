package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kitroom/kitroom-backend/api/responses"
	pkgAuth "github.com/kitroom/kitroom-backend/pkg/auth"
	"github.com/kitroom/kitroom-backend/pkg/config"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
)

// Auth validates the portal-issued bearer token and seeds the request
// context with the member identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.MemberID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing member id"))
				return
			}

			ctx := WithMemberID(r.Context(), claims.MemberID.String())
			ctx = WithRole(ctx, string(claims.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"member_id": claims.MemberID.String(),
					"role":      string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
