// Package schemas defines the data structures
package schemas

import (
	"time"

	"github.com/google/uuid"
)

// Account represents the data model for a user account in the system.
type Account struct {
	ID              uuid.UUID  // Unique identifier for the account.
	FullName        string     // Display name of the account owner.
	Email           string     // Lower-cased login email.
	PasswordHash    string     // bcrypt hash of the password.
	AvatarURL       *string    // Public URL of the avatar image, if any.
	AvatarKey       *string    // Storage key of the avatar image, if any.
	ResetCode       *string    // Pending password reset code.
	ResetCodeExpiry *time.Time // Absolute expiry of the pending reset code.
	CreatedAt       time.Time  // Timestamp when the account was created.
}

// FileCategory is the closed classification of a stored file.
type FileCategory string

const (
	CategoryImage    FileCategory = "IMAGE"
	CategoryPDF      FileCategory = "PDF"
	CategoryDocument FileCategory = "DOC"
	CategoryOther    FileCategory = "OTHER"
)

// StoredFile represents an uploaded file owned by one account.
type StoredFile struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	OriginalName string
	StorageKey   string
	Size         int64
	MimeType     string
	Category     FileCategory
	Description  *string
	CreatedAt    time.Time
}

// FileFilter narrows a file listing. Empty fields do not filter.
type FileFilter struct {
	Search   string
	Category FileCategory
}

// FileStats summarises the files owned by one account.
type FileStats struct {
	Files      int
	TotalBytes int64
	Categories map[FileCategory]int
}
