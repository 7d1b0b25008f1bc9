package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockUserStore implements store.UserStore for testing using testify/mock
type MockUserStore struct {
	mock.Mock
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{}
}

func (m *MockUserStore) Query(ctx context.Context, resource string, queryID string, params map[string]string) ([]map[string]interface{}, error) {
	args := m.Called(resource, queryID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]interface{}), args.Error(1)
}

func (m *MockUserStore) Read(ctx context.Context, resource string, id string) (map[string]interface{}, error) {
	args := m.Called(resource, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, resource string, id string, properties map[string]interface{}) error {
	args := m.Called(resource, id, properties)
	return args.Error(0)
}

func (m *MockUserStore) UpdateProperties(ctx context.Context, resource string, id string, updates map[string]interface{}) error {
	args := m.Called(resource, id, updates)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
