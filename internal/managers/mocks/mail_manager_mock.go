package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendResetCode(ctx context.Context, email, fullName, code string) error {
	args := m.Called(ctx, email, fullName, code)
	return args.Error(0)
}
