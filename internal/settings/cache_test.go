package settings_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/settings"
	"github.com/aaronshaf/churches-sub000/internal/settings/mocks"
)

// fakeKV — потокобезопасное in-memory KV для сквозных сценариев,
// где важно наблюдать состояние кэша между вызовами.
type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func strPtr(s string) *string { return &s }

func testRows() []*models.Setting {
	return []*models.Setting{
		{Key: "logo_url", Value: strPtr("https://x/logo.png")},
		{Key: "site_title", Value: nil},
	}
}

func TestGetAll_IdempotentPopulation(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	repo := new(mocks.SettingsRepository)
	// База должна быть прочитана ровно один раз: второй вызов обслуживается из KV
	repo.On("GetAll", ctx).Return(testRows(), nil).Once()

	cache := settings.NewCache(kv, repo, zap.NewNop())

	first, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)

	second, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeHit, outcome)
	assert.Equal(t, first, second)

	// KV заполнен снапшотом, равным возвращенному отображению
	raw, ok, err := kv.Get(ctx, "settings:snapshot")
	require.NoError(t, err)
	require.True(t, ok)
	var stored settings.Snapshot
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, first, stored)

	repo.AssertExpectations(t)
}

func TestGetAll_CacheShortCircuit(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	snapshot := settings.Snapshot{"site_title": strPtr("Acme")}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "settings:snapshot", raw, 0))

	// Репозиторий без ожиданий: любое обращение к базе провалит тест
	repo := new(mocks.SettingsRepository)

	cache := settings.NewCache(kv, repo, zap.NewNop())
	got, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeHit, outcome)
	assert.Equal(t, snapshot, got)
	repo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestGetAll_MissFallbackOnKVReadError(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.KVStore)
	kv.On("Get", ctx, mock.Anything).Return(nil, false, errors.New("kv unavailable"))
	kv.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return(testRows(), nil)

	cache := settings.NewCache(kv, repo, zap.NewNop())
	got, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)
	assert.Equal(t, "https://x/logo.png", *got["logo_url"])
}

func TestGetAll_WriteFailureTolerance(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.KVStore)
	kv.On("Get", ctx, mock.Anything).Return(nil, false, nil)
	kv.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("kv write failed"))

	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return(testRows(), nil)

	cache := settings.NewCache(kv, repo, zap.NewNop())
	got, outcome, err := cache.GetAll(ctx)
	// Сбой записи в KV не должен доходить до вызывающего кода
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)
	assert.Len(t, got, 2)
	kv.AssertExpectations(t)
}

func TestGetAll_CorruptedSnapshotFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	require.NoError(t, kv.Put(ctx, "settings:snapshot", []byte("{not json"), 0))

	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return(testRows(), nil).Once()

	cache := settings.NewCache(kv, repo, zap.NewNop())
	got, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}

func TestGetAll_DatabaseFailurePropagates(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	dbErr := errors.New("connection refused")
	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return(nil, dbErr)

	cache := settings.NewCache(kv, repo, zap.NewNop())
	_, outcome, err := cache.GetAll(ctx)
	require.ErrorIs(t, err, dbErr)
	assert.Equal(t, settings.OutcomeMissFailed, outcome)
}

func TestGet_PointLookup(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return([]*models.Setting{
		{Key: "site_title", Value: strPtr("Acme")},
	}, nil).Once()

	cache := settings.NewCache(kv, repo, zap.NewNop())

	value, err := cache.Get(ctx, "site_title")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "Acme", *value)

	missing, err := cache.Get(ctx, "missing_key")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInvalidate_ForcesRequery(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	repo := new(mocks.SettingsRepository)
	// База читается дважды: при первом промахе и после инвалидации
	repo.On("GetAll", ctx).Return(testRows(), nil).Twice()

	cache := settings.NewCache(kv, repo, zap.NewNop())

	_, outcome, err := cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)

	// Прогретый кэш обслуживается без базы
	_, outcome, err = cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeHit, outcome)

	cache.Invalidate(ctx)

	// После инвалидации кэш обязан перечитать базу
	_, outcome, err = cache.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.OutcomeMissRecovered, outcome)

	repo.AssertExpectations(t)
}

func TestInvalidate_SwallowsKVError(t *testing.T) {
	ctx := context.Background()
	kv := new(mocks.KVStore)
	kv.On("Delete", ctx, mock.Anything).Return(errors.New("kv unavailable"))

	cache := settings.NewCache(kv, new(mocks.SettingsRepository), zap.NewNop())
	// Не должно ни паниковать, ни возвращать ошибку
	cache.Invalidate(ctx)
	kv.AssertExpectations(t)
}

func TestGetAll_ConcreteScenario(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", ctx).Return(testRows(), nil).Once()

	cache := settings.NewCache(kv, repo, zap.NewNop())

	got, _, err := cache.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got["logo_url"])
	assert.Equal(t, "https://x/logo.png", *got["logo_url"])
	// site_title присутствует в снапшоте, но со значением NULL
	valueKeyPresent := false
	if v, ok := got["site_title"]; ok {
		valueKeyPresent = true
		assert.Nil(t, v)
	}
	assert.True(t, valueKeyPresent)

	value, err := cache.Get(ctx, "logo_url")
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, "https://x/logo.png", *value)
}
