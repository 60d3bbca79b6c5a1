package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cloud-drive/internal/schemas"
	"cloud-drive/internal/utils"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh T, sanitizes and validates
// it and stores the *T under utils.SanitizedPayloadKey.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, err)
			c.Abort()
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, err)
			c.Abort()
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, schemas.BadRequest, err)
			c.Abort()
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}

var errMissingPayload = errors.New("sanitized payload missing")

// Payload returns the body stored by ValidateAndSanitizeStruct. It writes a bad request
// and returns false if the middleware did not run for T.
func Payload[T any](c *gin.Context) (*T, bool) {
	value, ok := c.Get(utils.SanitizedPayloadKey.String())
	if ok {
		if payload, ok := value.(*T); ok {
			return payload, true
		}
	}

	utils.WriteAndLogError(c, schemas.BadRequest, errMissingPayload)
	return nil, false
}

// LimitBody caps the request body at limit bytes. Reads beyond it fail with
// *http.MaxBytesError.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
