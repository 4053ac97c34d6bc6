package settings

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
)

const (
	// snapshotKey — единственный ключ кэширующего слоя: снапшот всегда
	// кэшируется целиком, частичного кэширования по ключам нет.
	snapshotKey = "settings:snapshot"

	// snapshotTTL — срок жизни снапшота в KV. Инвалидация best-effort:
	// при её сбое устаревшие данные видны максимум этот срок.
	snapshotTTL = 7 * 24 * time.Hour
)

// Snapshot — полное отображение ключ -> значение всех настроек.
// nil-значение означает настройку с NULL в базе.
type Snapshot map[string]*string

// Outcome сообщает, каким путем был получен снапшот.
type Outcome int

const (
	// OutcomeHit — валидный снапшот прочитан из KV, база не трогалась.
	OutcomeHit Outcome = iota
	// OutcomeMissRecovered — KV пуст или недоступен, снапшот собран из базы.
	OutcomeMissRecovered
	// OutcomeMissFailed — не удалось прочитать и KV, и базу.
	OutcomeMissFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMissRecovered:
		return "miss_recovered"
	case OutcomeMissFailed:
		return "miss_failed"
	}
	return "unknown"
}

// Cache — сквозной read-through кэш таблицы settings.
// Источник истины — реляционная база; KV хранит одноразовую проекцию,
// которую можно в любой момент потерять без потери данных.
//
// Ошибки кэширующего слоя никогда не доходят до вызывающего кода:
// сбой чтения KV трактуется как промах, сбой записи и удаления —
// логируется и глотается. Наружу уходят только ошибки базы.
type Cache struct {
	kv     KVStore
	repo   interfaces.SettingsRepository
	logger *zap.Logger
}

// NewCache создает кэш настроек поверх KV-слоя и репозитория.
func NewCache(kv KVStore, repo interfaces.SettingsRepository, logger *zap.Logger) *Cache {
	return &Cache{
		kv:     kv,
		repo:   repo,
		logger: logger.Named("SettingsCache"),
	}
}

// GetAll возвращает снапшот всех настроек.
// Сначала пробует KV; при промахе или любой ошибке KV читает все строки
// таблицы settings, возвращает собранный снапшот и best-effort
// репопулирует KV с фиксированным TTL.
//
// Гарантия: вызов не падает из-за недоступности кэширующего слоя,
// ошибка возможна только при сбое чтения базы.
func (c *Cache) GetAll(ctx context.Context) (Snapshot, Outcome, error) {
	raw, found, err := c.kv.Get(ctx, snapshotKey)
	if err != nil {
		// Любая ошибка KV — это промах, а не отказ
		c.logger.Warn("KV read failed, falling back to database", zap.Error(err))
	} else if found {
		var snapshot Snapshot
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			c.logger.Warn("Cached settings snapshot is corrupted, falling back to database", zap.Error(err))
		} else {
			c.logger.Debug("Settings snapshot served from cache", zap.Int("keys", len(snapshot)))
			return snapshot, OutcomeHit, nil
		}
	}

	rows, err := c.repo.GetAll(ctx)
	if err != nil {
		// Единственный фатальный путь: источник истины недоступен
		return nil, OutcomeMissFailed, err
	}

	snapshot := make(Snapshot, len(rows))
	for _, row := range rows {
		snapshot[row.Key] = row.Value
	}

	c.populate(ctx, snapshot)
	return snapshot, OutcomeMissRecovered, nil
}

// populate пишет свежий снапшот в KV. Сбой записи не влияет на результат
// вызова GetAll, поэтому ошибка только логируется.
func (c *Cache) populate(ctx context.Context, snapshot Snapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Error("Failed to marshal settings snapshot", zap.Error(err))
		return
	}
	if err := c.kv.Put(ctx, snapshotKey, raw, snapshotTTL); err != nil {
		c.logger.Warn("Failed to repopulate settings snapshot in KV", zap.Error(err))
		return
	}
	c.logger.Debug("Settings snapshot repopulated in KV", zap.Int("keys", len(snapshot)))
}

// Get возвращает значение настройки по ключу или nil, если ключа нет.
// Точечных запросов ни к KV, ни к базе не делается — всегда читается
// полный снапшот через GetAll.
func (c *Cache) Get(ctx context.Context, key string) (*string, error) {
	snapshot, _, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot[key], nil
}

// Invalidate удаляет снапшот из KV, чтобы следующий GetAll перечитал базу.
// Инвалидация best-effort: сбой только логируется и никогда не
// возвращается вызывающему — он лишь отложит свежесть данных до TTL.
func (c *Cache) Invalidate(ctx context.Context) {
	if err := c.kv.Delete(ctx, snapshotKey); err != nil {
		c.logger.Warn("Failed to invalidate settings snapshot", zap.Error(err))
		return
	}
	c.logger.Info("Settings snapshot invalidated")
}
