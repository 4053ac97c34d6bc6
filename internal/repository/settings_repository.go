package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

const (
	getAllSettingsQuery = `SELECT key, value, created_at, updated_at FROM settings ORDER BY key`
	upsertSettingQuery  = `
        INSERT INTO settings (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value
            -- updated_at обновляется триггером
    `
	deleteSettingQuery = `DELETE FROM settings WHERE key = $1`
)

// Compile-time check to ensure pgSettingsRepository implements SettingsRepository
var _ interfaces.SettingsRepository = (*pgSettingsRepository)(nil)

type pgSettingsRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgSettingsRepository создает новый экземпляр репозитория настроек.
func NewPgSettingsRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.SettingsRepository {
	return &pgSettingsRepository{
		db:     db,
		logger: logger.Named("PgSettingsRepo"),
	}
}

// GetAll возвращает все настройки справочника.
func (r *pgSettingsRepository) GetAll(ctx context.Context) ([]*models.Setting, error) {
	var settings []*models.Setting
	err := pgxscan.Select(ctx, r.db, &settings, getAllSettingsQuery)
	if err != nil {
		// Пустая таблица — не ошибка, вернем пустой срез
		if errors.Is(err, pgx.ErrNoRows) {
			return []*models.Setting{}, nil
		}
		r.logger.Error("Error getting all settings", zap.Error(err))
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	return settings, nil
}

// Upsert создает или обновляет настройку.
func (r *pgSettingsRepository) Upsert(ctx context.Context, key string, value *string) error {
	log := r.logger.With(zap.String("key", key))

	_, err := r.db.Exec(ctx, upsertSettingQuery, key, value)
	if err != nil {
		log.Error("Error upserting setting", zap.Error(err))
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	log.Info("Setting upserted successfully")
	return nil
}

// Delete удаляет настройку по ключу.
func (r *pgSettingsRepository) Delete(ctx context.Context, key string) error {
	log := r.logger.With(zap.String("key", key))

	commandTag, err := r.db.Exec(ctx, deleteSettingQuery, key)
	if err != nil {
		log.Error("Error deleting setting", zap.Error(err))
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	if commandTag.RowsAffected() == 0 {
		log.Warn("Setting not found by key")
		return models.ErrNotFound
	}
	log.Info("Setting deleted successfully")
	return nil
}
