package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/utils"
)

func LogRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		entry := log.WithFields(log.Fields{
			"traceId": c.GetString(utils.TraceIdKey.String()),
			"service": utils.ExtractServiceName(),
		})
		utils.LogEntry(entry, "info", "Request received: "+c.Request.Method+" "+c.Request.URL.Path)

		c.Next()

		entry.WithFields(log.Fields{
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("Request finished")
	}
}
