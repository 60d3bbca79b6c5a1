package stores

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-drive/internal/schemas"
)

var fileColumnNames = []string{"id", "owner_id", "original_name", "storage_key", "size", "mime_type", "category",
	"description", "created_at"}

func TestFileStoreCreate(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)

	description := "cat"
	file := &schemas.StoredFile{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		OriginalName: "cat.png",
		StorageKey:   "1700000000000-abc.png",
		Size:         10,
		MimeType:     "image/png",
		Category:     schemas.CategoryImage,
		Description:  &description,
		CreatedAt:    time.Now(),
	}

	poolMock.ExpectExec("INSERT INTO files").
		WithArgs(file.ID, file.OwnerID, "cat.png", file.StorageKey, int64(10), "image/png", "IMAGE", &description,
			file.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, store.Create(context.Background(), file))
}

func TestFileStoreListBuildsFilters(t *testing.T) {
	ownerId := uuid.New()
	created := time.Now()

	testCases := []struct {
		name    string
		filter  schemas.FileFilter
		pattern string
		args    []interface{}
	}{
		{
			"NoFilter",
			schemas.FileFilter{},
			`SELECT .+ FROM files WHERE owner_id = \$1 ORDER BY created_at DESC`,
			[]interface{}{ownerId},
		},
		{
			"Search",
			schemas.FileFilter{Search: "50%_off"},
			`WHERE owner_id = \$1 AND \(original_name ILIKE \$2 OR description ILIKE \$2\) ORDER BY`,
			[]interface{}{ownerId, `%50\%\_off%`},
		},
		{
			"SearchAndCategory",
			schemas.FileFilter{Search: "cat", Category: schemas.CategoryImage},
			`ILIKE \$2\) AND category = \$3 ORDER BY created_at DESC`,
			[]interface{}{ownerId, "%cat%", "IMAGE"},
		},
		{
			"Category",
			schemas.FileFilter{Category: schemas.CategoryPDF},
			`WHERE owner_id = \$1 AND category = \$2 ORDER BY`,
			[]interface{}{ownerId, "PDF"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			poolMock := newPoolMock(t)
			store := NewFileStore(poolMock)

			poolMock.ExpectQuery(tc.pattern).WithArgs(tc.args...).
				WillReturnRows(pgxmock.NewRows(fileColumnNames).
					AddRow(uuid.New(), ownerId, "cat.png", "k1.png", int64(10), "image/png", "IMAGE", nil, created))

			files, err := store.List(context.Background(), ownerId, tc.filter)
			require.NoError(t, err)
			require.Len(t, files, 1)
			assert.Equal(t, schemas.CategoryImage, files[0].Category)
			assert.Nil(t, files[0].Description)
		})
	}
}

func TestFileStoreListEmpty(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)
	ownerId := uuid.New()

	poolMock.ExpectQuery("SELECT .+ FROM files").WithArgs(ownerId).
		WillReturnRows(pgxmock.NewRows(fileColumnNames))

	files, err := store.List(context.Background(), ownerId, schemas.FileFilter{})
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestFileStoreFindOwnedIsOwnerScoped(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)
	ownerId, fileId := uuid.New(), uuid.New()

	poolMock.ExpectQuery(`SELECT .+ FROM files WHERE id = \$1 AND owner_id = \$2`).
		WithArgs(fileId, ownerId).
		WillReturnRows(pgxmock.NewRows(fileColumnNames))

	_, err := store.FindOwned(context.Background(), ownerId, fileId)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteOwned(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)
	ownerId, fileId := uuid.New(), uuid.New()

	poolMock.ExpectBegin()
	poolMock.ExpectQuery(`SELECT .+ FROM files WHERE id = \$1 AND owner_id = \$2 FOR UPDATE`).
		WithArgs(fileId, ownerId).
		WillReturnRows(pgxmock.NewRows(fileColumnNames).
			AddRow(fileId, ownerId, "cat.png", "k1.png", int64(10), "image/png", "IMAGE", nil, time.Now()))
	poolMock.ExpectExec(`DELETE FROM files WHERE id = \$1 AND owner_id = \$2`).WithArgs(fileId, ownerId).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	poolMock.ExpectCommit()

	var released string
	file, err := store.DeleteOwned(context.Background(), ownerId, fileId, func(file *schemas.StoredFile) {
		released = file.StorageKey
	})
	require.NoError(t, err)
	assert.Equal(t, fileId, file.ID)
	assert.Equal(t, "k1.png", released)
}

func TestFileStoreDeleteOwnedNotFound(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)
	ownerId, fileId := uuid.New(), uuid.New()

	poolMock.ExpectBegin()
	poolMock.ExpectQuery(`SELECT .+ FROM files WHERE id = \$1 AND owner_id = \$2 FOR UPDATE`).
		WithArgs(fileId, ownerId).
		WillReturnRows(pgxmock.NewRows(fileColumnNames))
	poolMock.ExpectRollback()

	released := false
	_, err := store.DeleteOwned(context.Background(), ownerId, fileId, func(*schemas.StoredFile) {
		released = true
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, released)
}

func TestFileStoreStats(t *testing.T) {
	poolMock := newPoolMock(t)
	store := NewFileStore(poolMock)
	ownerId := uuid.New()

	poolMock.ExpectQuery("SELECT category, COUNT").WithArgs(ownerId).
		WillReturnRows(pgxmock.NewRows([]string{"category", "count", "sum"}).
			AddRow("IMAGE", 2, int64(300)).
			AddRow("PDF", 1, int64(1000)))

	stats, err := store.Stats(context.Background(), ownerId)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, int64(1300), stats.TotalBytes)
	assert.Equal(t, 2, stats.Categories[schemas.CategoryImage])
	assert.Equal(t, 1, stats.Categories[schemas.CategoryPDF])
}
