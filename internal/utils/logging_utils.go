package utils

import (
	"context"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func GenerateTraceId() string {
	return uuid.New().String()
}

// ExtractServiceName names the running deployment in every log line. Preview
// deployments set PR_NUMBER, everything else logs as "main".
func ExtractServiceName() string {
	if prNumber := os.Getenv("PR_NUMBER"); prNumber != "" {
		return "PR-" + prNumber
	}
	return "main"
}

func LogEntry(entry *log.Entry, level, message string) {
	switch level {
	case "debug":
		entry.Debug(message)
	case "info":
		entry.Info(message)
	case "warn":
		entry.Warn(message)
	case "error":
		entry.Error(message)
	case "fatal":
		entry.Fatal(message)
	case "panic":
		entry.Panic(message)
	default:
		entry.Info(message)
	}
}

// LogMessageWithFields logs with the trace id of the request. ctx is usually the
// *gin.Context of the request or a context derived from it.
func LogMessageWithFields(ctx context.Context, level, message string) {
	LogEntry(entryFor(ctx), level, message)
}

func LogMessageWithFieldsAndError(ctx context.Context, level, message string, err error) {
	LogEntry(entryFor(ctx).WithError(err), level, message)
}

// LogExtraFieldsAndError is LogMessageWithFieldsAndError with additional fields on the entry.
func LogExtraFieldsAndError(ctx context.Context, level, message string, fields log.Fields, err error) {
	LogEntry(entryFor(ctx).WithFields(fields).WithError(err), level, message)
}

func entryFor(ctx context.Context) *log.Entry {
	traceId, _ := ctx.Value(TraceIdKey.String()).(string)
	return log.WithFields(log.Fields{
		"traceId": traceId,
		"service": ExtractServiceName(),
	})
}
