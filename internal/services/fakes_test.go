package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cloud-drive/internal/config"
	"cloud-drive/internal/managers"
	"cloud-drive/internal/managers/mocks"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/stores"
)

var errStoreDown = errors.New("connection refused")

// memoryAccountStore mirrors the SQL semantics of the account store in memory.
type memoryAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*schemas.Account
	failNext error
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{accounts: make(map[uuid.UUID]*schemas.Account)}
}

func (m *memoryAccountStore) failure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memoryAccountStore) Create(_ context.Context, account *schemas.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	account.Email = stores.NormalizeEmail(account.Email)
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return stores.ErrEmailTaken
		}
	}
	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *memoryAccountStore) FindByEmail(_ context.Context, email string) (*schemas.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	email = stores.NormalizeEmail(email)
	for _, account := range m.accounts {
		if account.Email == email {
			found := *account
			return &found, nil
		}
	}
	return nil, stores.ErrNotFound
}

func (m *memoryAccountStore) FindById(_ context.Context, id uuid.UUID) (*schemas.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	account, ok := m.accounts[id]
	if !ok {
		return nil, stores.ErrNotFound
	}
	found := *account
	return &found, nil
}

func (m *memoryAccountStore) update(id uuid.UUID, apply func(*schemas.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	account, ok := m.accounts[id]
	if !ok {
		return stores.ErrNotFound
	}
	apply(account)
	return nil
}

func (m *memoryAccountStore) UpdateDisplayName(_ context.Context, id uuid.UUID, fullName string) error {
	return m.update(id, func(a *schemas.Account) { a.FullName = fullName })
}

func (m *memoryAccountStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return m.update(id, func(a *schemas.Account) { a.PasswordHash = passwordHash })
}

func (m *memoryAccountStore) UpdateAvatar(_ context.Context, id uuid.UUID, avatarURL, avatarKey *string) error {
	return m.update(id, func(a *schemas.Account) {
		a.AvatarURL = avatarURL
		a.AvatarKey = avatarKey
	})
}

func (m *memoryAccountStore) SetResetCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return m.update(id, func(a *schemas.Account) {
		a.ResetCode = &code
		a.ResetCodeExpiry = &expiresAt
	})
}

func (m *memoryAccountStore) ClearResetCode(_ context.Context, id uuid.UUID) error {
	return m.update(id, func(a *schemas.Account) {
		a.ResetCode = nil
		a.ResetCodeExpiry = nil
	})
}

func (m *memoryAccountStore) ConsumeResetCode(_ context.Context, id uuid.UUID, code string, now time.Time, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	account, ok := m.accounts[id]
	if !ok || account.ResetCode == nil || *account.ResetCode != code || !account.ResetCodeExpiry.After(now) {
		return stores.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.ResetCode = nil
	account.ResetCodeExpiry = nil
	return nil
}

func (m *memoryAccountStore) get(t *testing.T, email string) *schemas.Account {
	account, err := m.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return account
}

// memoryFileStore mirrors the owner-scoped SQL of the file store in memory.
type memoryFileStore struct {
	mu       sync.Mutex
	files    map[uuid.UUID]*schemas.StoredFile
	failNext error
}

func newMemoryFileStore() *memoryFileStore {
	return &memoryFileStore{files: make(map[uuid.UUID]*schemas.StoredFile)}
}

func (m *memoryFileStore) failure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *memoryFileStore) Create(_ context.Context, file *schemas.StoredFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return err
	}

	stored := *file
	m.files[file.ID] = &stored
	return nil
}

func (m *memoryFileStore) List(_ context.Context, ownerId uuid.UUID, filter schemas.FileFilter) ([]*schemas.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	files := make([]*schemas.StoredFile, 0)
	for _, file := range m.files {
		if file.OwnerID != ownerId {
			continue
		}
		if filter.Category != "" && file.Category != filter.Category {
			continue
		}
		if search != "" {
			inName := strings.Contains(strings.ToLower(file.OriginalName), search)
			inDescription := file.Description != nil && strings.Contains(strings.ToLower(*file.Description), search)
			if !inName && !inDescription {
				continue
			}
		}
		found := *file
		files = append(files, &found)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

func (m *memoryFileStore) FindOwned(_ context.Context, ownerId, fileId uuid.UUID) (*schemas.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	file, ok := m.files[fileId]
	if !ok || file.OwnerID != ownerId {
		return nil, stores.ErrNotFound
	}
	found := *file
	return &found, nil
}

func (m *memoryFileStore) DeleteOwned(_ context.Context, ownerId, fileId uuid.UUID, release func(*schemas.StoredFile)) (*schemas.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	file, ok := m.files[fileId]
	if !ok || file.OwnerID != ownerId {
		return nil, stores.ErrNotFound
	}
	if release != nil {
		release(file)
	}
	delete(m.files, fileId)
	return file, nil
}

func (m *memoryFileStore) Stats(_ context.Context, ownerId uuid.UUID) (*schemas.FileStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure(); err != nil {
		return nil, err
	}

	stats := &schemas.FileStats{Categories: make(map[schemas.FileCategory]int)}
	for _, file := range m.files {
		if file.OwnerID != ownerId {
			continue
		}
		stats.Files++
		stats.TotalBytes += file.Size
		stats.Categories[file.Category]++
	}
	return stats, nil
}

// countingPasswords records how often the dummy comparison ran.
type countingPasswords struct {
	managers.PasswordMgr
	dummyCompares int
}

func (c *countingPasswords) CompareDummy(password string) {
	c.dummyCompares++
	c.PasswordMgr.CompareDummy(password)
}

// env wires the services against in-memory stores, an in-memory filesystem and real
// bcrypt and JWT codecs.
type env struct {
	cfg       *config.Config
	accounts  *memoryAccountStore
	files     *memoryFileStore
	fs        afero.Fs
	blobs     *storage.DiskStorage
	passwords *countingPasswords
	tokens    *managers.JWTManager
	mail      *mocks.MockMailManager
	auth      *AuthService
	profile   *ProfileService
	fileSvc   *FileService
}

func newEnv(t *testing.T) *env {
	cfg, err := config.FromEnv(func(string) string { return "" })
	require.NoError(t, err)

	passwordMgr, err := managers.NewPasswordManager(bcrypt.MinCost)
	require.NoError(t, err)

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	blobs, err := storage.NewDiskStorage(fs, "uploads", "http://localhost:8080/uploads")
	require.NoError(t, err)

	e := &env{
		cfg:       cfg,
		accounts:  newMemoryAccountStore(),
		files:     newMemoryFileStore(),
		fs:        fs,
		blobs:     blobs,
		passwords: &countingPasswords{PasswordMgr: passwordMgr},
		tokens:    managers.NewJWTManager(privateKey, publicKey, cfg.TokenValidity),
		mail:      &mocks.MockMailManager{},
	}
	e.auth = NewAuthService(e.accounts, e.passwords, e.tokens, e.mail, cfg)
	e.profile = NewProfileService(e.accounts, e.passwords, e.blobs)
	e.fileSvc = NewFileService(e.files, e.blobs)

	t.Cleanup(func() { e.mail.AssertExpectations(t) })
	return e
}

func (e *env) signup(t *testing.T, fullName, email, password string) *schemas.AuthDTO {
	auth, err := e.auth.Signup(context.Background(), &schemas.SignupRequest{
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return auth
}

func (e *env) blobCount(t *testing.T) int {
	entries, err := afero.ReadDir(e.fs, "uploads")
	require.NoError(t, err)
	return len(entries)
}
