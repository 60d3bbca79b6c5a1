package mocks

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
)

// MockJwtManager is a mock of the JWTManager.
// Only token generation is mocked, the middleware is supplied by the test.
type MockJwtManager struct {
	mock.Mock
	Middleware gin.HandlerFunc
}

func (m *MockJwtManager) GenerateClaims(accountId string) jwt.Claims {
	args := m.Called(accountId)
	return args.Get(0).(jwt.Claims)
}

func (m *MockJwtManager) GenerateJWT(claims jwt.Claims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockJwtManager) ValidateJWT(tokenString string) (jwt.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(jwt.Claims)
	return claims, args.Error(1)
}

func (m *MockJwtManager) JWTMiddleware() gin.HandlerFunc {
	if m.Middleware != nil {
		return m.Middleware
	}
	return func(c *gin.Context) { c.Next() }
}
