package middleware

import (
	"github.com/gin-gonic/gin"

	"cloud-drive/internal/utils"
)

// InjectTrace gives every request a trace id and echoes it in the X-Trace-Id header.
func InjectTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := utils.GenerateTraceId()
		c.Set(utils.TraceIdKey.String(), traceId)
		c.Header("X-Trace-Id", traceId)
		c.Next()
	}
}
