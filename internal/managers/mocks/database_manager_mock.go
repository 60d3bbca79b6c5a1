// Package mocks provides testify mocks of the managers.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"cloud-drive/internal/interfaces"
)

type MockDatabaseManager struct {
	mock.Mock
}

func (m *MockDatabaseManager) GetPool() interfaces.PgxPoolIface {
	args := m.Called()
	return args.Get(0).(interfaces.PgxPoolIface)
}
