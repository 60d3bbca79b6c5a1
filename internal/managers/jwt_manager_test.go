package managers

import (
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloud-drive/internal/utils"
)

const validity = 7 * 24 * time.Hour

func newTestJWTManager(t *testing.T, clock *time.Time) *JWTManager {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	jm := NewJWTManager(privateKey, publicKey, validity)
	jm.now = func() time.Time { return *clock }
	return jm
}

func TestTokenValidityWindow(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0)
	clock := issuedAt
	jm := newTestJWTManager(t, &clock)

	accountId := uuid.NewString()
	token, err := jm.GenerateJWT(jm.GenerateClaims(accountId))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"AtIssue", issuedAt, true},
		{"OneSecondBeforeExpiry", issuedAt.Add(validity - time.Second), true},
		{"AtExpiry", issuedAt.Add(validity), false},
		{"AfterExpiry", issuedAt.Add(validity + time.Hour), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock = tc.at
			claims, err := jm.ValidateJWT(token)
			if !tc.valid {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			subject, err := claims.GetSubject()
			require.NoError(t, err)
			assert.Equal(t, accountId, subject)
		})
	}
}

func TestTokenValidityWindowSubSecondIssue(t *testing.T) {
	issuedAt := time.Unix(1700000000, int64(900*time.Millisecond))
	clock := issuedAt
	jm := newTestJWTManager(t, &clock)

	token, err := jm.GenerateJWT(jm.GenerateClaims(uuid.NewString()))
	require.NoError(t, err)

	testCases := []struct {
		name  string
		at    time.Time
		valid bool
	}{
		{"HalfSecondBeforeExpiry", issuedAt.Add(validity - 500*time.Millisecond), true},
		{"JustBeforeExpiry", issuedAt.Add(validity - time.Millisecond), true},
		{"NextFullSecondAfterExpiry", time.Unix(issuedAt.Add(validity).Unix()+1, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clock = tc.at
			_, err := jm.ValidateJWT(token)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateRejectsTampering(t *testing.T) {
	clock := time.Now()
	jm := newTestJWTManager(t, &clock)
	other := newTestJWTManager(t, &clock)

	token, err := jm.GenerateJWT(jm.GenerateClaims(uuid.NewString()))
	require.NoError(t, err)

	// Signed by a different key
	foreign, err := other.GenerateJWT(other.GenerateClaims(uuid.NewString()))
	require.NoError(t, err)
	_, err = jm.ValidateJWT(foreign)
	assert.Error(t, err)

	// Flipped signature byte
	tampered := []byte(token)
	last := len(tampered) - 2
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}
	_, err = jm.ValidateJWT(string(tampered))
	assert.Error(t, err)

	// Unsigned token
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jm.GenerateClaims(uuid.NewString())).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = jm.ValidateJWT(none)
	assert.Error(t, err)

	_, err = jm.ValidateJWT("not.a.token")
	assert.Error(t, err)
}

func TestNewJWTManagerFromFilePersistsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "jwt.key")

	first, err := NewJWTManagerFromFile(path, validity)
	require.NoError(t, err)
	token, err := first.GenerateJWT(first.GenerateClaims(uuid.NewString()))
	require.NoError(t, err)

	second, err := NewJWTManagerFromFile(path, validity)
	require.NoError(t, err)
	_, err = second.ValidateJWT(token)
	assert.NoError(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := time.Now()
	jm := newTestJWTManager(t, &clock)

	accountId := uuid.New()
	token, err := jm.GenerateJWT(jm.GenerateClaims(accountId.String()))
	require.NoError(t, err)
	notAnId, err := jm.GenerateJWT(jm.GenerateClaims("12345"))
	require.NoError(t, err)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(utils.TraceIdKey.String(), "trace")
	})
	router.GET("/protected", jm.JWTMiddleware(), func(c *gin.Context) {
		id, _ := c.Get(utils.AccountIdKey.String())
		c.String(http.StatusOK, id.(uuid.UUID).String())
	})

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"Valid", "Bearer " + token, http.StatusOK},
		{"LowercaseScheme", "bearer " + token, http.StatusOK},
		{"Missing", "", http.StatusUnauthorized},
		{"WrongScheme", "Basic " + token, http.StatusUnauthorized},
		{"EmptyToken", "Bearer ", http.StatusUnauthorized},
		{"Garbage", "Bearer NonsenseToken", http.StatusUnauthorized},
		{"SubjectNotAnId", "Bearer " + notAnId, http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				request.Header.Set("Authorization", tc.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, tc.status, recorder.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, accountId.String(), recorder.Body.String())
			}
		})
	}
}
