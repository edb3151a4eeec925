package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPacer is a mock implementation of port.Pacer.
type MockPacer struct {
	mock.Mock
}

func (m *MockPacer) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
