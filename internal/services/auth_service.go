package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/config"
	"cloud-drive/internal/managers"
	"cloud-drive/internal/schemas"
	"cloud-drive/internal/stores"
	"cloud-drive/internal/utils"
)

const resetCodeDigits = 6

var resetCodeSpace = big.NewInt(1_000_000)

// AuthService covers signup, login and the password reset by one-time code.
type AuthService struct {
	accounts      stores.AccountStore
	passwords     managers.PasswordMgr
	tokens        managers.JWTMgr
	mail          managers.MailMgr
	resetValidity time.Duration
	now           func() time.Time
}

func NewAuthService(accounts stores.AccountStore, passwords managers.PasswordMgr, tokens managers.JWTMgr,
	mail managers.MailMgr, cfg *config.Config) *AuthService {
	return &AuthService{
		accounts:      accounts,
		passwords:     passwords,
		tokens:        tokens,
		mail:          mail,
		resetValidity: cfg.ResetCodeValidity,
		now:           time.Now,
	}
}

// Signup creates the account and logs it in.
func (s *AuthService) Signup(ctx context.Context, request *schemas.SignupRequest) (*schemas.AuthDTO, error) {
	hash, err := s.passwords.Hash(request.Password)
	if err != nil {
		return nil, wrap(schemas.InternalServerError, err)
	}

	account := &schemas.Account{
		ID:           uuid.New(),
		FullName:     request.FullName,
		Email:        request.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, stores.ErrEmailTaken) {
			return nil, wrap(schemas.EmailTaken, err)
		}
		return nil, wrap(schemas.DatabaseError, err)
	}

	utils.LogMessageWithFields(ctx, "info", "Account created")
	return s.issueToken(account)
}

// Login checks the credentials. Unknown emails and wrong passwords fail the same way
// and both run a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, request *schemas.LoginRequest) (*schemas.AuthDTO, error) {
	account, err := s.accounts.FindByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			s.passwords.CompareDummy(request.Password)
			return nil, wrap(schemas.InvalidCredentials, err)
		}
		return nil, wrap(schemas.DatabaseError, err)
	}

	if err := s.passwords.Compare(account.PasswordHash, request.Password); err != nil {
		if errors.Is(err, managers.ErrPasswordMismatch) {
			return nil, wrap(schemas.InvalidCredentials, err)
		}
		return nil, wrap(schemas.InternalServerError, err)
	}

	return s.issueToken(account)
}

// ForgotPassword issues a fresh reset code, replacing any pending one, and tries to
// mail it. A failed delivery is logged together with the code and does not fail the request.
func (s *AuthService) ForgotPassword(ctx context.Context, request *schemas.ForgotPasswordRequest) error {
	account, err := s.accounts.FindByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return wrap(schemas.UserNotFound, err)
		}
		return wrap(schemas.DatabaseError, err)
	}

	code, err := generateResetCode()
	if err != nil {
		return wrap(schemas.InternalServerError, err)
	}

	if err := s.accounts.SetResetCode(ctx, account.ID, code, s.now().Add(s.resetValidity)); err != nil {
		return wrap(schemas.DatabaseError, err)
	}

	if err := s.mail.SendResetCode(ctx, account.Email, account.FullName, code); err != nil {
		// The operator hands the code over when mail is down
		utils.LogExtraFieldsAndError(ctx, "warn", "Could not deliver reset code",
			log.Fields{"email": account.Email, "code": code}, err)
	}

	return nil
}

// ResetPassword replaces the password if otp is the pending code of the account and has
// not expired. A failed attempt leaves the pending code in place.
func (s *AuthService) ResetPassword(ctx context.Context, request *schemas.ResetPasswordRequest) error {
	account, err := s.accounts.FindByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return wrap(schemas.UserNotFound, err)
		}
		return wrap(schemas.DatabaseError, err)
	}

	now := s.now()
	if !codeMatches(account, request.Otp, now) {
		return schemas.InvalidOrExpiredCode
	}

	hash, err := s.passwords.Hash(request.Password)
	if err != nil {
		return wrap(schemas.InternalServerError, err)
	}

	// The store repeats the check, so two concurrent resets cannot both use the code
	if err := s.accounts.ConsumeResetCode(ctx, account.ID, request.Otp, now, hash); err != nil {
		if errors.Is(err, stores.ErrNotFound) {
			return wrap(schemas.InvalidOrExpiredCode, err)
		}
		return wrap(schemas.DatabaseError, err)
	}

	utils.LogMessageWithFields(ctx, "info", "Password reset")
	return nil
}

func (s *AuthService) issueToken(account *schemas.Account) (*schemas.AuthDTO, error) {
	token, err := s.tokens.GenerateJWT(s.tokens.GenerateClaims(account.ID.String()))
	if err != nil {
		return nil, wrap(schemas.InternalServerError, err)
	}

	return &schemas.AuthDTO{
		Token: token,
		User:  toUserDTO(account),
	}, nil
}

func codeMatches(account *schemas.Account, code string, now time.Time) bool {
	if account.ResetCode == nil || account.ResetCodeExpiry == nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*account.ResetCode), []byte(code)) != 1 {
		return false
	}
	return now.Before(*account.ResetCodeExpiry)
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}
