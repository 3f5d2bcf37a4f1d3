package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/jobify/pkg/apperror"
	"github.com/oksasatya/jobify/pkg/response"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// AppErrors keep their status and message; anything else becomes a 500.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		entry := logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"path":       c.FullPath(),
			"method":     c.Request.Method,
		})

		if c.Writer.Written() {
			entry.Warn("error after response was written")
			return
		}

		if ae, ok := apperror.As(err); ok {
			if ae.Kind == apperror.KindInternal {
				entry.Error("request failed")
			} else {
				entry.Debug("request rejected")
			}
			response.Error[any](c, ae.Code, ae.Message, nil)
			return
		}
		entry.Error("unhandled error")
		response.Error[any](c, http.StatusInternalServerError, "Internal Server Error", nil)
	}
}
