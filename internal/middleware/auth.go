package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/and161185/coursereports/internal/auth"
	"github.com/and161185/coursereports/internal/errs"
	"github.com/and161185/coursereports/internal/metrics"
	"github.com/and161185/coursereports/internal/model"
	"github.com/and161185/coursereports/internal/utils"
	"go.uber.org/zap"
)

type contextKey string

const UserContextKey contextKey = "user"

// DenyReason is logged and counted server side only. Clients always get the
// same AccessDenied response.
type DenyReason string

const (
	DenyMissingHeader DenyReason = "missing_header"
	DenyInvalidToken  DenyReason = "invalid_token"
	DenyNoIdentity    DenyReason = "no_identity"
	DenyNotAdmin      DenyReason = "not_admin"
)

const accessDeniedMessage = "Not Found"

func WriteAccessDenied(w http.ResponseWriter) {
	_ = utils.WriteMessage(w, http.StatusNotFound, accessDeniedMessage)
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(UserContextKey).(model.Identity)
	return identity, ok
}

func deny(w http.ResponseWriter, r *http.Request, reason DenyReason, logger *zap.SugaredLogger, m *metrics.HTTPMetrics) {
	logger.Infof("%v: reason=%s method=%s uri=%s", errs.ErrAccessDenied, reason, r.Method, r.RequestURI)
	m.AccessDenied(string(reason))
	WriteAccessDenied(w)
}

func AuthMiddleware(tm *auth.TokenManager, logger *zap.SugaredLogger, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				deny(w, r, DenyMissingHeader, logger, m)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			identity, err := tm.ParseToken(tokenStr)
			if err != nil {
				deny(w, r, DenyInvalidToken, logger, m)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware must be chained after AuthMiddleware.
func AdminMiddleware(logger *zap.SugaredLogger, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				deny(w, r, DenyNoIdentity, logger, m)
				return
			}

			if !identity.IsAdmin() {
				logger.Warnf("non-admin caller %s on admin route", identity.UserID)
				deny(w, r, DenyNotAdmin, logger, m)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
