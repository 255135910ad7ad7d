package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	appctx "github.com/alenprastyaa/hakimah-laporan-harian/internal/core/context"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

// ErrorHandler renders the last error registered on the context as
// {code, message, details}. Causes are logged, never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

// writeError writes err as the JSON error body. Anything that is not an
// AppError becomes a 500 carrying the request id.
func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "error", err)
		appErr = apperror.NewInternal(err)
	} else if appErr.Err != nil {
		logger.Error(ctx, "request error", "code", appErr.Code, "cause", appErr.Err)
	}

	details := make(map[string]any, len(appErr.Details)+1)
	for k, v := range appErr.Details {
		details[k] = v
	}
	if appErr.Code == apperror.CodeInternal {
		details["request_id"] = appctx.GetRequestID(ctx)
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"details": details,
	})
}
