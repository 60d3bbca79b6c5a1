package utils

// contextKey is used for values stored on the gin context, so they do not collide
// with keys of other packages.
type contextKey struct {
	name string
}

// String returns the key under which gin stores the value.
func (c *contextKey) String() string {
	return c.name
}

var (
	// TraceIdKey holds the trace id of the current request.
	TraceIdKey = &contextKey{"traceId"}
	// AccountIdKey holds the uuid.UUID of the authenticated account.
	AccountIdKey = &contextKey{"accountId"}
	// SanitizedPayloadKey holds the validated and sanitized request body.
	SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
)
