package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/s-fanou/feed/internal/apperr"
	"github.com/s-fanou/feed/internal/logging"
)

type errorResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const msgInternal = "Internal server error."

// ErrorResponder renders the last error a handler pushed with c.Error.
// Errors without a kind become a 500 with a generic message; the cause is
// logged, never sent.
func ErrorResponder(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		resp := errorResponse{Message: msgInternal}
		if ae, ok := apperr.As(err); ok {
			status = ae.Status()
			resp = errorResponse{Message: ae.Message, Data: ae.Data}
			if resp.Message == "" {
				resp.Message = http.StatusText(status)
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error(c.Request.Context(), "request failed",
				"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
		}

		c.AbortWithStatusJSON(status, resp)
	}
}

// fail records err and stops the chain; ErrorResponder writes the response.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
