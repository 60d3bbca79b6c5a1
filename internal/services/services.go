// Package services holds the account, profile and file use cases. Services return
// *schemas.CustomError values, wrapping the underlying cause where there is one.
package services

import (
	"fmt"
	"io"
	"time"

	"cloud-drive/internal/schemas"
)

// Upload is a file received from a client. Name and MimeType are untrusted and only
// used for display and classification.
type Upload struct {
	Name        string
	MimeType    string
	Content     io.Reader
	Description *string
}

func wrap(customErr *schemas.CustomError, err error) error {
	return fmt.Errorf("%w: %w", customErr, err)
}

func toUserDTO(account *schemas.Account) *schemas.UserDTO {
	return &schemas.UserDTO{
		Id:              account.ID.String(),
		FullName:        account.FullName,
		Email:           account.Email,
		ProfileImageUrl: account.AvatarURL,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
