package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/settings"
)

// SettingsService определяет админские операции над настройками сайта.
// Каждая мутация проходит через базу и затем сбрасывает снапшот в KV,
// чтобы следующее чтение увидело свежие данные.
type SettingsService interface {
	List(ctx context.Context) ([]*models.Setting, error)
	Upsert(ctx context.Context, key string, value *string) error
	Delete(ctx context.Context, key string) error
}

var _ SettingsService = (*settingsServiceImpl)(nil)

type settingsServiceImpl struct {
	repo      interfaces.SettingsRepository
	cache     *settings.Cache
	publisher interfaces.EventPublisher
	logger    *zap.Logger
}

// NewSettingsService создает сервис настроек. publisher может быть nil,
// если брокер событий не сконфигурирован.
func NewSettingsService(repo interfaces.SettingsRepository, cache *settings.Cache, publisher interfaces.EventPublisher, logger *zap.Logger) SettingsService {
	return &settingsServiceImpl{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("SettingsService"),
	}
}

// List возвращает все настройки напрямую из базы, минуя кэш:
// админка должна видеть источник истины.
func (s *settingsServiceImpl) List(ctx context.Context) ([]*models.Setting, error) {
	return s.repo.GetAll(ctx)
}

// Upsert записывает настройку и сбрасывает кэш.
func (s *settingsServiceImpl) Upsert(ctx context.Context, key string, value *string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return models.ErrInvalidInput
	}

	if err := s.repo.Upsert(ctx, key, value); err != nil {
		s.logger.Error("Failed to upsert setting", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	s.invalidate(ctx, key)
	s.logger.Info("Setting updated", zap.String("key", key))
	return nil
}

// Delete удаляет настройку и сбрасывает кэш.
func (s *settingsServiceImpl) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}

	s.invalidate(ctx, key)
	s.logger.Info("Setting deleted", zap.String("key", key))
	return nil
}

// invalidate сбрасывает снапшот и уведомляет подписчиков.
// Запись в базу уже состоялась, поэтому ошибки здесь только логируются.
func (s *settingsServiceImpl) invalidate(ctx context.Context, changedKey string) {
	s.cache.Invalidate(ctx)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSettingsInvalidated(ctx, changedKey); err != nil {
		s.logger.Warn("Failed to publish settings invalidation event", zap.String("key", changedKey), zap.Error(err))
	}
}
