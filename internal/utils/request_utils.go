package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cloud-drive/internal/schemas"
)

// WriteAndLogResponse wraps the response object in the success envelope and writes it
// with the provided status code.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "info", "Returning response")
	c.JSON(statusCode, &schemas.SuccessDTO{
		Success: true,
		Data:    response,
	})
}

// WriteAndLogError logs the underlying error and writes the client facing error with
// the status code of customErr.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, err error) {
	if err != nil {
		LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	}
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.JSON(customErr.HttpStatus, &schemas.ErrorDTO{
		Success: false,
		Message: customErr.Message,
		Code:    customErr.Code,
	})
}

// HandleServiceError writes err as returned by a service. Errors that are not a
// CustomError are reported as internal errors without leaking their text.
func HandleServiceError(c *gin.Context, err error) {
	var customErr *schemas.CustomError
	if errors.As(err, &customErr) {
		WriteAndLogError(c, customErr, err)
		return
	}
	WriteAndLogError(c, schemas.InternalServerError, err)
}

// AccountId returns the account stored by the JWT middleware.
func AccountId(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(AccountIdKey.String())
	if !ok {
		return uuid.Nil, false
	}
	accountId, ok := value.(uuid.UUID)
	return accountId, ok
}
