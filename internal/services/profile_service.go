package services

import (
	"context"
	"errors"
	"mime"
	"strings"

	"github.com/google/uuid"

	"cloud-drive/internal/managers"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/stores"
	"cloud-drive/internal/utils"
)

// ProfileService lets the logged-in account read and change its own record.
type ProfileService struct {
	accounts  stores.AccountStore
	passwords managers.PasswordMgr
	blobs     storage.BlobStorage
}

func NewProfileService(accounts stores.AccountStore, passwords managers.PasswordMgr, blobs storage.BlobStorage) *ProfileService {
	return &ProfileService{
		accounts:  accounts,
		passwords: passwords,
		blobs:     blobs,
	}
}

func (s *ProfileService) Get(ctx context.Context, accountId uuid.UUID) (*schemas.UserDTO, error) {
	account, err := s.find(ctx, accountId)
	if err != nil {
		return nil, err
	}
	return toUserDTO(account), nil
}

func (s *ProfileService) UpdateName(ctx context.Context, accountId uuid.UUID, fullName string) (*schemas.UserDTO, error) {
	if err := s.accounts.UpdateDisplayName(ctx, accountId, fullName); err != nil {
		return nil, storeError(err)
	}
	return s.Get(ctx, accountId)
}

func (s *ProfileService) ChangePassword(ctx context.Context, accountId uuid.UUID, password string) error {
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return wrap(schemas.InternalServerError, err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountId, hash); err != nil {
		return storeError(err)
	}

	utils.LogMessageWithFields(ctx, "info", "Password changed")
	return nil
}

// ChangeAvatar stores an image as the new avatar. The previous avatar blob is removed
// afterwards, a failure there is only logged.
func (s *ProfileService) ChangeAvatar(ctx context.Context, accountId uuid.UUID, upload *Upload) (*schemas.UserDTO, error) {
	if upload == nil || upload.Content == nil {
		return nil, schemas.FileMissing
	}
	if !isImage(upload.MimeType) {
		return nil, schemas.NotAnImage
	}

	account, err := s.find(ctx, accountId)
	if err != nil {
		return nil, err
	}

	key, _, err := s.blobs.Save(upload.Name, upload.Content)
	if err != nil {
		return nil, blobError(err)
	}

	url := s.blobs.PublicURL(key)
	if err := s.accounts.UpdateAvatar(ctx, accountId, &url, &key); err != nil {
		s.removeBlob(ctx, key)
		return nil, storeError(err)
	}

	if account.AvatarKey != nil {
		s.removeBlob(ctx, *account.AvatarKey)
	}

	account.AvatarURL = &url
	account.AvatarKey = &key
	return toUserDTO(account), nil
}

func (s *ProfileService) find(ctx context.Context, accountId uuid.UUID) (*schemas.Account, error) {
	account, err := s.accounts.FindById(ctx, accountId)
	if err != nil {
		return nil, storeError(err)
	}
	return account, nil
}

func (s *ProfileService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Remove(key); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not remove blob "+key, err)
	}
}

// storeError maps a store failure of an account lookup or update. A token can outlive
// its account, so a missing row is reported as not found.
func storeError(err error) error {
	if errors.Is(err, stores.ErrNotFound) {
		return wrap(schemas.UserNotFound, err)
	}
	return wrap(schemas.DatabaseError, err)
}

func isImage(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
