package managers

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordMgr hashes and verifies passwords.
type PasswordMgr interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
	// CompareDummy runs a full comparison against a fixed hash and always fails.
	// Used for unknown accounts so their login costs the same as a wrong password.
	CompareDummy(password string)
}

// PasswordManager implements PasswordMgr with bcrypt at a fixed cost.
type PasswordManager struct {
	cost      int
	dummyHash []byte
}

// NewPasswordManager precomputes the dummy hash with the given cost.
func NewPasswordManager(cost int) (PasswordMgr, error) {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-unknown-accounts"), cost)
	if err != nil {
		return nil, err
	}

	return &PasswordManager{cost: cost, dummyHash: dummyHash}, nil
}

func (pm *PasswordManager) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), pm.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (pm *PasswordManager) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

func (pm *PasswordManager) CompareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(pm.dummyHash, []byte(password))
}
