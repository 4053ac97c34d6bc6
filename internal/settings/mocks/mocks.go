package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// Mock KVStore
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1), args.Error(2)
}

func (m *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Mock SettingsRepository
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]*models.Setting)
	return rows, args.Error(1)
}

func (m *SettingsRepository) Upsert(ctx context.Context, key string, value *string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *SettingsRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
