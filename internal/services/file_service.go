package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"cloud-drive/internal/schemas"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/stores"
	"cloud-drive/internal/utils"
)

var allCategories = []schemas.FileCategory{
	schemas.CategoryImage,
	schemas.CategoryPDF,
	schemas.CategoryDocument,
	schemas.CategoryOther,
}

// FileService is the caller-scoped view on the file ledger. Every method takes the
// owner id resolved by the JWT middleware; files of other accounts are reported as
// not found.
type FileService struct {
	files stores.FileStore
	blobs storage.BlobStorage
	now   func() time.Time
}

func NewFileService(files stores.FileStore, blobs storage.BlobStorage) *FileService {
	return &FileService{
		files: files,
		blobs: blobs,
		now:   time.Now,
	}
}

// List returns the caller's files, newest first. categoryFilter is a category name,
// "all" or empty.
func (s *FileService) List(ctx context.Context, ownerId uuid.UUID, search, categoryFilter string) ([]*schemas.FileDTO, error) {
	category, ok := schemas.ParseCategoryFilter(categoryFilter)
	if !ok {
		return nil, schemas.BadRequest
	}

	files, err := s.files.List(ctx, ownerId, schemas.FileFilter{Search: search, Category: category})
	if err != nil {
		return nil, wrap(schemas.DatabaseError, err)
	}

	fileDtos := make([]*schemas.FileDTO, 0, len(files))
	for _, file := range files {
		fileDtos = append(fileDtos, s.toFileDTO(file))
	}
	return fileDtos, nil
}

// Create writes the bytes under a new storage key and records them for the caller.
// If the record cannot be written the bytes are removed again.
func (s *FileService) Create(ctx context.Context, ownerId uuid.UUID, upload *Upload) (*schemas.FileDTO, error) {
	if upload == nil || upload.Content == nil {
		return nil, schemas.FileMissing
	}

	key, size, err := s.blobs.Save(upload.Name, upload.Content)
	if err != nil {
		return nil, blobError(err)
	}

	mimeType := strings.TrimSpace(upload.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file := &schemas.StoredFile{
		ID:           uuid.New(),
		OwnerID:      ownerId,
		OriginalName: upload.Name,
		StorageKey:   key,
		Size:         size,
		MimeType:     mimeType,
		Category:     schemas.CategoryFromMimeType(mimeType),
		Description:  normalizeDescription(upload.Description),
		CreatedAt:    s.now(),
	}

	if err := s.files.Create(ctx, file); err != nil {
		s.removeBlob(ctx, key)
		return nil, wrap(schemas.DatabaseError, err)
	}

	utils.LogMessageWithFields(ctx, "info", "Stored file "+file.ID.String())
	return s.toFileDTO(file), nil
}

// Delete removes the caller's file. The bytes go first; if that fails the record is
// still deleted and the orphaned blob is logged.
func (s *FileService) Delete(ctx context.Context, ownerId, fileId uuid.UUID) (*schemas.FileIdDTO, error) {
	_, err := s.files.DeleteOwned(ctx, ownerId, fileId, func(file *schemas.StoredFile) {
		s.removeBlob(ctx, file.StorageKey)
	})
	if err != nil {
		return nil, fileError(err)
	}

	return &schemas.FileIdDTO{Id: fileId.String()}, nil
}

// ResolveDownloadLocation returns the static URL of the caller's file.
func (s *FileService) ResolveDownloadLocation(ctx context.Context, ownerId, fileId uuid.UUID) (*schemas.DownloadDTO, error) {
	file, err := s.files.FindOwned(ctx, ownerId, fileId)
	if err != nil {
		return nil, fileError(err)
	}

	return &schemas.DownloadDTO{Url: s.blobs.PublicURL(file.StorageKey)}, nil
}

// Stats summarises the caller's files. Every category is present, empty ones with 0.
func (s *FileService) Stats(ctx context.Context, ownerId uuid.UUID) (*schemas.FileStatsDTO, error) {
	stats, err := s.files.Stats(ctx, ownerId)
	if err != nil {
		return nil, wrap(schemas.DatabaseError, err)
	}

	categories := make(map[schemas.FileCategory]int, len(allCategories))
	for _, category := range allCategories {
		categories[category] = stats.Categories[category]
	}

	return &schemas.FileStatsDTO{
		Files:      stats.Files,
		TotalBytes: stats.TotalBytes,
		Categories: categories,
	}, nil
}

func (s *FileService) toFileDTO(file *schemas.StoredFile) *schemas.FileDTO {
	return &schemas.FileDTO{
		Id:           file.ID.String(),
		OriginalName: file.OriginalName,
		MimeType:     file.MimeType,
		Size:         file.Size,
		Url:          s.blobs.PublicURL(file.StorageKey),
		UploadedAt:   formatTime(file.CreatedAt),
		Category:     file.Category,
		Description:  file.Description,
	}
}

func (s *FileService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Remove(key); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not remove blob "+key, err)
	}
}

func fileError(err error) error {
	if errors.Is(err, stores.ErrNotFound) {
		return wrap(schemas.FileNotFound, err)
	}
	return wrap(schemas.DatabaseError, err)
}

func blobError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return wrap(schemas.FileTooLarge, err)
	}
	return wrap(schemas.InternalServerError, err)
}

func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
