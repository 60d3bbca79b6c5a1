// Package stores contains the PostgreSQL queries for accounts and files.
package stores

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cloud-drive/internal/interfaces"
	"cloud-drive/internal/schemas"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when an account with the same email exists.
	ErrEmailTaken = errors.New("email already registered")
)

// AccountStore holds user records.
type AccountStore interface {
	Create(ctx context.Context, account *schemas.Account) error
	FindByEmail(ctx context.Context, email string) (*schemas.Account, error)
	FindById(ctx context.Context, id uuid.UUID) (*schemas.Account, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, fullName string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, avatarKey *string) error
	SetResetCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, id uuid.UUID) error
	ConsumeResetCode(ctx context.Context, id uuid.UUID, code string, now time.Time, passwordHash string) error
}

// PostgresAccountStore implements AccountStore on top of a pgx pool.
type PostgresAccountStore struct {
	pool interfaces.Querier
}

// NewAccountStore returns an AccountStore backed by the given pool.
func NewAccountStore(pool interfaces.Querier) AccountStore {
	return &PostgresAccountStore{pool: pool}
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const accountColumns = "id, full_name, email, password_hash, avatar_url, avatar_key, reset_code, reset_code_expires_at, created_at"

// Create inserts a new account. The email is normalized before it is stored.
func (s *PostgresAccountStore) Create(ctx context.Context, account *schemas.Account) error {
	account.Email = NormalizeEmail(account.Email)

	queryString := "INSERT INTO accounts (id, full_name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)"
	_, err := s.pool.Exec(ctx, queryString, account.ID, account.FullName, account.Email, account.PasswordHash, account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailTaken
		}
		return err
	}

	return nil
}

// FindByEmail looks an account up by its login email, ignoring case.
func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*schemas.Account, error) {
	queryString := "SELECT " + accountColumns + " FROM accounts WHERE lower(email) = $1"
	return scanAccount(s.pool.QueryRow(ctx, queryString, NormalizeEmail(email)))
}

// FindById looks an account up by its id.
func (s *PostgresAccountStore) FindById(ctx context.Context, id uuid.UUID) (*schemas.Account, error) {
	queryString := "SELECT " + accountColumns + " FROM accounts WHERE id = $1"
	return scanAccount(s.pool.QueryRow(ctx, queryString, id))
}

func (s *PostgresAccountStore) UpdateDisplayName(ctx context.Context, id uuid.UUID, fullName string) error {
	queryString := "UPDATE accounts SET full_name = $1 WHERE id = $2"
	return s.execOne(ctx, queryString, fullName, id)
}

func (s *PostgresAccountStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	queryString := "UPDATE accounts SET password_hash = $1 WHERE id = $2"
	return s.execOne(ctx, queryString, passwordHash, id)
}

func (s *PostgresAccountStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL, avatarKey *string) error {
	queryString := "UPDATE accounts SET avatar_url = $1, avatar_key = $2 WHERE id = $3"
	return s.execOne(ctx, queryString, avatarURL, avatarKey, id)
}

// SetResetCode stores a pending reset code, replacing any earlier one.
func (s *PostgresAccountStore) SetResetCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	queryString := "UPDATE accounts SET reset_code = $1, reset_code_expires_at = $2 WHERE id = $3"
	return s.execOne(ctx, queryString, code, expiresAt, id)
}

func (s *PostgresAccountStore) ClearResetCode(ctx context.Context, id uuid.UUID) error {
	queryString := "UPDATE accounts SET reset_code = NULL, reset_code_expires_at = NULL WHERE id = $1"
	return s.execOne(ctx, queryString, id)
}

// ConsumeResetCode replaces the password and clears the reset code in one statement,
// but only while the stored code equals code and has not expired at now.
// ErrNotFound means the code did not match.
func (s *PostgresAccountStore) ConsumeResetCode(ctx context.Context, id uuid.UUID, code string, now time.Time, passwordHash string) error {
	queryString := `UPDATE accounts SET password_hash = $1, reset_code = NULL, reset_code_expires_at = NULL
					WHERE id = $2 AND reset_code = $3 AND reset_code_expires_at > $4`
	return s.execOne(ctx, queryString, passwordHash, id, code, now)
}

func (s *PostgresAccountStore) execOne(ctx context.Context, queryString string, args ...interface{}) error {
	tag, err := s.pool.Exec(ctx, queryString, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*schemas.Account, error) {
	account := &schemas.Account{}
	err := row.Scan(&account.ID, &account.FullName, &account.Email, &account.PasswordHash, &account.AvatarURL,
		&account.AvatarKey, &account.ResetCode, &account.ResetCodeExpiry, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return account, nil
}
