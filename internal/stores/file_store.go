package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/interfaces"
	"cloud-drive/internal/schemas"
)

// FileStore is the ownership ledger of stored files. Every lookup and mutation
// takes the owner id, so a file of another account behaves like a missing one.
type FileStore interface {
	Create(ctx context.Context, file *schemas.StoredFile) error
	List(ctx context.Context, ownerId uuid.UUID, filter schemas.FileFilter) ([]*schemas.StoredFile, error)
	FindOwned(ctx context.Context, ownerId, fileId uuid.UUID) (*schemas.StoredFile, error)
	DeleteOwned(ctx context.Context, ownerId, fileId uuid.UUID, release func(*schemas.StoredFile)) (*schemas.StoredFile, error)
	Stats(ctx context.Context, ownerId uuid.UUID) (*schemas.FileStats, error)
}

// PostgresFileStore implements FileStore on top of a pgx pool.
type PostgresFileStore struct {
	pool interfaces.PgxPoolIface
}

// NewFileStore returns a FileStore backed by the given pool.
func NewFileStore(pool interfaces.PgxPoolIface) FileStore {
	return &PostgresFileStore{pool: pool}
}

const fileColumns = "id, owner_id, original_name, storage_key, size, mime_type, category, description, created_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PostgresFileStore) Create(ctx context.Context, file *schemas.StoredFile) error {
	queryString := `INSERT INTO files (id, owner_id, original_name, storage_key, size, mime_type, category, description, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, queryString, file.ID, file.OwnerID, file.OriginalName, file.StorageKey, file.Size,
		file.MimeType, string(file.Category), file.Description, file.CreatedAt)
	return err
}

// List returns the owner's files, newest first. Search matches the original name or the
// description case-insensitively, Category restricts to one category.
func (s *PostgresFileStore) List(ctx context.Context, ownerId uuid.UUID, filter schemas.FileFilter) ([]*schemas.StoredFile, error) {
	conditions := []string{"owner_id = $1"}
	queryArgs := []interface{}{ownerId}

	if search := strings.TrimSpace(filter.Search); search != "" {
		queryArgs = append(queryArgs, "%"+likeEscaper.Replace(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(queryArgs))
		conditions = append(conditions, fmt.Sprintf("(original_name ILIKE %s OR description ILIKE %s)", placeholder, placeholder))
	}

	if filter.Category != "" {
		queryArgs = append(queryArgs, string(filter.Category))
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(queryArgs)))
	}

	queryString := fmt.Sprintf("SELECT %s FROM files WHERE %s ORDER BY created_at DESC", fileColumns,
		strings.Join(conditions, " AND "))

	rows, err := s.pool.Query(ctx, queryString, queryArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]*schemas.StoredFile, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return files, nil
}

// FindOwned returns the file only if it exists and belongs to ownerId.
func (s *PostgresFileStore) FindOwned(ctx context.Context, ownerId, fileId uuid.UUID) (*schemas.StoredFile, error) {
	queryString := "SELECT " + fileColumns + " FROM files WHERE id = $1 AND owner_id = $2"
	file, err := scanFile(s.pool.QueryRow(ctx, queryString, fileId, ownerId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return file, nil
}

// DeleteOwned locks the owner's record, hands it to release and deletes it, all in one
// transaction. release runs while the row is locked, so a concurrent delete of the same
// file waits and then sees ErrNotFound.
func (s *PostgresFileStore) DeleteOwned(ctx context.Context, ownerId, fileId uuid.UUID,
	release func(*schemas.StoredFile)) (*schemas.StoredFile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.WithError(err).Warn("Error rolling back transaction")
		}
	}()

	queryString := "SELECT " + fileColumns + " FROM files WHERE id = $1 AND owner_id = $2 FOR UPDATE"
	file, err := scanFile(tx.QueryRow(ctx, queryString, fileId, ownerId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if release != nil {
		release(file)
	}

	queryString = "DELETE FROM files WHERE id = $1 AND owner_id = $2"
	tag, err := tx.Exec(ctx, queryString, fileId, ownerId)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	return file, nil
}

// Stats counts the owner's files per category and sums their sizes.
func (s *PostgresFileStore) Stats(ctx context.Context, ownerId uuid.UUID) (*schemas.FileStats, error) {
	queryString := "SELECT category, COUNT(*), COALESCE(SUM(size), 0) FROM files WHERE owner_id = $1 GROUP BY category"
	rows, err := s.pool.Query(ctx, queryString, ownerId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &schemas.FileStats{Categories: make(map[schemas.FileCategory]int)}
	for rows.Next() {
		var category string
		var count int
		var size int64
		if err := rows.Scan(&category, &count, &size); err != nil {
			return nil, err
		}
		stats.Categories[schemas.FileCategory(category)] = count
		stats.Files += count
		stats.TotalBytes += size
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func scanFile(row pgx.Row) (*schemas.StoredFile, error) {
	file := &schemas.StoredFile{}
	var category string
	if err := row.Scan(&file.ID, &file.OwnerID, &file.OriginalName, &file.StorageKey, &file.Size, &file.MimeType,
		&category, &file.Description, &file.CreatedAt); err != nil {
		return nil, err
	}
	file.Category = schemas.FileCategory(category)

	return file, nil
}
