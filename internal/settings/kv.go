package settings

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KVStore — минимальный контракт кэширующего слоя: строковый ключ,
// байтовое значение, TTL на запись. Любое хранилище с этими тремя
// операциями подходит; кэш настроек не делает других предположений.
type KVStore interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put записывает значение с временем жизни.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete удаляет ключ. Отсутствие ключа — не ошибка.
	Delete(ctx context.Context, key string) error
}

// Compile-time check to ensure redisKV implements KVStore
var _ KVStore = (*redisKV)(nil)

type redisKV struct {
	client *redis.Client
}

// NewRedisKV оборачивает клиент Redis в интерфейс KVStore.
func NewRedisKV(client *redis.Client) KVStore {
	return &redisKV{client: client}
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (r *redisKV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
