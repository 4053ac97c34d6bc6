package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service/mocks"
	"github.com/aaronshaf/churches-sub000/internal/settings"
	settingsmocks "github.com/aaronshaf/churches-sub000/internal/settings/mocks"
)

func newSettingsServiceForTest(repo *settingsmocks.SettingsRepository, kv *settingsmocks.KVStore, publisher *mocks.EventPublisher) SettingsService {
	cache := settings.NewCache(kv, repo, zap.NewNop())
	if publisher == nil {
		// Типизированный nil не должен попадать в интерфейсное поле
		return NewSettingsService(repo, cache, nil, zap.NewNop())
	}
	return NewSettingsService(repo, cache, publisher, zap.NewNop())
}

func TestSettingsService_UpsertInvalidatesAndPublishes(t *testing.T) {
	ctx := context.Background()
	repo := new(settingsmocks.SettingsRepository)
	kv := new(settingsmocks.KVStore)
	publisher := new(mocks.EventPublisher)

	value := "https://x/logo.png"
	repo.On("Upsert", ctx, "logo_url", &value).Return(nil)
	kv.On("Delete", ctx, mock.Anything).Return(nil)
	publisher.On("PublishSettingsInvalidated", ctx, "logo_url").Return(nil)

	svc := newSettingsServiceForTest(repo, kv, publisher)
	require.NoError(t, svc.Upsert(ctx, "logo_url", &value))

	repo.AssertExpectations(t)
	kv.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSettingsService_UpsertEmptyKeyRejected(t *testing.T) {
	svc := newSettingsServiceForTest(new(settingsmocks.SettingsRepository), new(settingsmocks.KVStore), nil)
	err := svc.Upsert(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSettingsService_UpsertDBErrorSkipsInvalidation(t *testing.T) {
	ctx := context.Background()
	repo := new(settingsmocks.SettingsRepository)
	kv := new(settingsmocks.KVStore) // без ожиданий: Delete вызываться не должен

	dbErr := errors.New("connection refused")
	repo.On("Upsert", ctx, "site_title", mock.Anything).Return(dbErr)

	svc := newSettingsServiceForTest(repo, kv, nil)
	err := svc.Upsert(ctx, "site_title", nil)
	require.ErrorIs(t, err, dbErr)
	kv.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestSettingsService_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	repo := new(settingsmocks.SettingsRepository)
	kv := new(settingsmocks.KVStore)
	publisher := new(mocks.EventPublisher)

	repo.On("Delete", ctx, "tagline").Return(nil)
	kv.On("Delete", ctx, mock.Anything).Return(nil)
	publisher.On("PublishSettingsInvalidated", ctx, "tagline").Return(nil)

	svc := newSettingsServiceForTest(repo, kv, publisher)
	require.NoError(t, svc.Delete(ctx, "tagline"))
	publisher.AssertExpectations(t)
}

func TestSettingsService_DeleteMissingKey(t *testing.T) {
	ctx := context.Background()
	repo := new(settingsmocks.SettingsRepository)
	repo.On("Delete", ctx, "missing").Return(models.ErrNotFound)

	svc := newSettingsServiceForTest(repo, new(settingsmocks.KVStore), nil)
	assert.ErrorIs(t, svc.Delete(ctx, "missing"), models.ErrNotFound)
}

func TestSettingsService_PublisherFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := new(settingsmocks.SettingsRepository)
	kv := new(settingsmocks.KVStore)
	publisher := new(mocks.EventPublisher)

	value := "Acme"
	repo.On("Upsert", ctx, "site_title", &value).Return(nil)
	kv.On("Delete", ctx, mock.Anything).Return(nil)
	publisher.On("PublishSettingsInvalidated", ctx, "site_title").Return(errors.New("broker down"))

	svc := newSettingsServiceForTest(repo, kv, publisher)
	// Сбой брокера не должен ронять успешную запись
	require.NoError(t, svc.Upsert(ctx, "site_title", &value))
}
