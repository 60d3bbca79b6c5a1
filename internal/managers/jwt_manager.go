package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/schemas"
	"cloud-drive/internal/utils"
)

const issuer = "cloud-drive"

var errMissingToken = errors.New("missing bearer token")

// JWTMgr issues and verifies session tokens and guards protected routes.
type JWTMgr interface {
	GenerateClaims(accountId string) jwt.Claims
	GenerateJWT(claims jwt.Claims) (string, error)
	ValidateJWT(tokenString string) (jwt.Claims, error)
	JWTMiddleware() gin.HandlerFunc
}

// JWTManager handles JWT generation, signing, and validation with an Ed25519 key pair.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	validity   time.Duration
	now        func() time.Time
}

// NewJWTManager creates a JWTManager from an existing key pair.
func NewJWTManager(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, validity time.Duration) *JWTManager {
	return &JWTManager{
		privateKey: privateKey,
		publicKey:  publicKey,
		validity:   validity,
		now:        time.Now,
	}
}

// NewJWTManagerFromFile loads the key pair stored at path, or generates and stores a new
// one on first start.
func NewJWTManagerFromFile(path string, validity time.Duration) (*JWTManager, error) {
	privateKey, publicKey, err := loadKeyPair(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		log.Info("No JWT key pair found, generating a new one")
		privateKey, publicKey, err = generateKeyPair(path)
		if err != nil {
			return nil, err
		}
	}

	return NewJWTManager(privateKey, publicKey, validity), nil
}

// GenerateClaims generates the standard claims for a session of the given account.
// exp has second resolution and is rounded up, so the token is accepted for at least
// the whole validity and rejected from the next full second after it ends.
func (jm *JWTManager) GenerateClaims(accountId string) jwt.Claims {
	now := jm.now()
	return jwt.MapClaims{
		"iss": issuer,
		"iat": now.Unix(),
		"exp": expiresAt(now.Add(jm.validity)),
		"sub": accountId,
	}
}

func expiresAt(t time.Time) int64 {
	if t.Truncate(time.Second).Equal(t) {
		return t.Unix()
	}
	return t.Unix() + 1
}

// GenerateJWT signs the given claims.
func (jm *JWTManager) GenerateJWT(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(jm.privateKey)
}

// ValidateJWT checks signature, issuer and expiry and returns the claims if valid.
// A token is rejected from its expiry second onwards.
func (jm *JWTManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("invalid signing method")
		}

		return jm.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(jm.now),
	)

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return token.Claims, nil
}

// JWTMiddleware rejects requests without a valid bearer token and stores the account id
// of the token in the context under utils.AccountIdKey.
func (jm *JWTManager) JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, err)
			c.Abort()
			return
		}

		claims, err := jm.ValidateJWT(tokenString)
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, err)
			c.Abort()
			return
		}

		subject, err := claims.GetSubject()
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, err)
			c.Abort()
			return
		}

		accountId, err := uuid.Parse(subject)
		if err != nil {
			utils.WriteAndLogError(c, schemas.Unauthorized, err)
			c.Abort()
			return
		}

		c.Set(utils.AccountIdKey.String(), accountId)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// generateKeyPair generates a new key pair and saves it to a file.
func generateKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	if err := saveKeyPair(privateKey, publicKey, path); err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// saveKeyPair saves the key pair to the specified file, readable by the owner only.
func saveKeyPair(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	keyPairBytes := make([]byte, 0, len(privateKey)+len(publicKey))
	keyPairBytes = append(keyPairBytes, privateKey...)
	keyPairBytes = append(keyPairBytes, publicKey...)
	return os.WriteFile(path, keyPairBytes, 0o600)
}

// loadKeyPair loads the key pair from the specified file.
func loadKeyPair(path string) (ed25519.PrivateKey, ed25519.PublicKey, error) {
	keyPairBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	// The key pair is the concatenation of private and public keys
	if len(keyPairBytes) != ed25519.PrivateKeySize+ed25519.PublicKeySize {
		return nil, nil, fmt.Errorf("invalid key pair format")
	}

	privateKey := ed25519.PrivateKey(keyPairBytes[:ed25519.PrivateKeySize])
	publicKey := ed25519.PublicKey(keyPairBytes[ed25519.PrivateKeySize:])
	return privateKey, publicKey, nil
}
