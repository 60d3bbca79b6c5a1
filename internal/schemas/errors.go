package schemas

import "net/http"

// CustomError is an error that can be shown to the client.
// Message and Code are public, HttpStatus decides the response status.
type CustomError struct {
	Message    string `json:"message"`
	Code       string `json:"code"`
	HttpStatus int    `json:"-"`
}

func (e *CustomError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	BadRequest = &CustomError{
		Message:    "The request body is invalid. Please check the request body and try again.",
		Code:       "ERR-001",
		HttpStatus: http.StatusBadRequest,
	}
	EmailTaken = &CustomError{
		Message:    "An account with this email already exists.",
		Code:       "ERR-002",
		HttpStatus: http.StatusConflict,
	}
	InvalidCredentials = &CustomError{
		Message:    "The credentials are invalid. Please check the credentials and try again.",
		Code:       "ERR-003",
		HttpStatus: http.StatusUnauthorized,
	}
	UserNotFound = &CustomError{
		Message:    "No account was found for this email.",
		Code:       "ERR-004",
		HttpStatus: http.StatusNotFound,
	}
	InvalidOrExpiredCode = &CustomError{
		Message:    "The reset code is invalid or has expired.",
		Code:       "ERR-005",
		HttpStatus: http.StatusBadRequest,
	}
	FileNotFound = &CustomError{
		Message:    "The file was not found.",
		Code:       "ERR-006",
		HttpStatus: http.StatusNotFound,
	}
	FileMissing = &CustomError{
		Message:    "No file was provided. Please attach a file and try again.",
		Code:       "ERR-007",
		HttpStatus: http.StatusBadRequest,
	}
	NotAnImage = &CustomError{
		Message:    "The avatar must be an image.",
		Code:       "ERR-008",
		HttpStatus: http.StatusBadRequest,
	}
	FileTooLarge = &CustomError{
		Message:    "The file exceeds the maximum upload size.",
		Code:       "ERR-009",
		HttpStatus: http.StatusRequestEntityTooLarge,
	}
	Unauthorized = &CustomError{
		Message:    "The request is unauthorized. Please login to your account.",
		Code:       "ERR-014",
		HttpStatus: http.StatusUnauthorized,
	}
	DatabaseError = &CustomError{
		Message:    "A database error occurred. Please try again later.",
		Code:       "ERR-500",
		HttpStatus: http.StatusInternalServerError,
	}
	InternalServerError = &CustomError{
		Message:    "An unexpected error occurred. Please try again later.",
		Code:       "ERR-501",
		HttpStatus: http.StatusInternalServerError,
	}
)
