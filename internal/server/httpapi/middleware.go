package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/s-fanou/feed/internal/apperr"
	"github.com/s-fanou/feed/internal/common"
	"github.com/s-fanou/feed/internal/logging"
	"github.com/s-fanou/feed/internal/server/auth"
)

type ctxKey string

const (
	userIDKey ctxKey = "userId"
	claimsKey ctxKey = "claims"

	msgNotAuthenticated = "Not authenticated."
)

// RequireAuth rejects requests without a valid bearer token. On success the
// user id and claims are stored on both the gin context and the request
// context.
func RequireAuth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := v.Authenticate(c.Request.Context(), c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			fail(c, authError(err))
			return
		}

		c.Set(string(userIDKey), claims.UserID)
		c.Set(string(claimsKey), claims)
		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func authError(err error) error {
	if te := auth.TokenError(err); te != nil {
		return apperr.Wrap(apperr.KindTokenVerificationFailed, "Token verification failed: "+te.Error()+".", err)
	}
	if errors.Is(err, common.ErrMissingAuthHeader) || errors.Is(err, common.ErrorUnauthorized) {
		return apperr.Wrap(apperr.KindNotAuthenticated, msgNotAuthenticated, err)
	}
	return apperr.Wrap(apperr.KindInternal, msgInternal, err)
}

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, userIDKey, claims.UserID)
}

// UserIDFromContext returns the authenticated user id put there by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ClaimsFromContext returns the verified token claims put there by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// RequestLogger writes one line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
