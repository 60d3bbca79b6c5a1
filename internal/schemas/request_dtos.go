// Package schemas defines the request structures for various operations in the application.
package schemas

// SignupRequest is a struct that represents a signup request
// FullName is required and must be less than 100 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=254,email,email_validation"`
	Password string `json:"password" validate:"required,min=8,max=72" sanitize:"-"`
}

// LoginRequest is a struct that represents a login request
// Any non-empty password is accepted here, the hash comparison rejects wrong ones
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required" sanitize:"-"`
}

// ForgotPasswordRequest is a struct that represents a request for a reset code
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// ResetPasswordRequest is a struct that represents a password reset request
// Otp is required and must be a 6-digit number
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Otp      string `json:"otp" validate:"required,numeric,len=6"`
	Password string `json:"password" validate:"required,min=8,max=72" sanitize:"-"`
}

// UpdateProfileRequest is a struct that represents a display name change
type UpdateProfileRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
}

// ChangePasswordRequest is a struct that represents a password change of the logged-in user
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72" sanitize:"-"`
}
