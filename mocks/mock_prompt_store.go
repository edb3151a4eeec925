package mocks

import "github.com/stretchr/testify/mock"

// MockPromptStore is a mock implementation of port.PromptStore.
type MockPromptStore struct {
	mock.Mock
}

func (m *MockPromptStore) Load(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}
