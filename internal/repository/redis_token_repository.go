package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

// Compile-time check to ensure redisTokenRepository implements TokenRepository
var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
// Для каждой пары токенов хранятся два ключа:
// access_uuid:{AccessUUID} -> UserID (TTL access-токена)
// refresh_uuid:{RefreshUUID} -> UserID (TTL refresh-токена)
// плюс set user_tokens:{UserID} с идентификаторами для массового логаута.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func accessKey(accessUUID string) string   { return fmt.Sprintf("access_uuid:%s", accessUUID) }
func refreshKey(refreshUUID string) string { return fmt.Sprintf("refresh_uuid:%s", refreshUUID) }
func userSetKey(userID uuid.UUID) string   { return fmt.Sprintf("user_tokens:%s", userID.String()) }

// SetToken stores token details in Redis.
func (r *redisTokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	now := time.Now()
	accessTTL := time.Unix(td.AtExpires, 0).Sub(now)
	refreshTTL := time.Unix(td.RtExpires, 0).Sub(now)
	userIDStr := userID.String()

	pipe := r.client.Pipeline()
	pipe.Set(ctx, accessKey(td.AccessUUID), userIDStr, accessTTL)
	pipe.Set(ctx, refreshKey(td.RefreshUUID), userIDStr, refreshTTL)
	pipe.SAdd(ctx, userSetKey(userID),
		fmt.Sprintf("access:%s", td.AccessUUID),
		fmt.Sprintf("refresh:%s", td.RefreshUUID))
	pipe.Expire(ctx, userSetKey(userID), refreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to set token details in redis", zap.Error(err), zap.String("userID", userIDStr))
		return fmt.Errorf("failed to set token details in redis: %w", err)
	}
	r.logger.Debug("Tokens stored in Redis",
		zap.String("userID", userIDStr),
		zap.Duration("accessTTL", accessTTL),
		zap.Duration("refreshTTL", refreshTTL))
	return nil
}

func (r *redisTokenRepository) getUserID(ctx context.Context, key string) (uuid.UUID, error) {
	userIDStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.Error(err), zap.String("key", key))
		return uuid.Nil, fmt.Errorf("failed to get token from redis: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		// Данные в Redis повреждены
		r.logger.Error("Failed to parse userID from redis data", zap.Error(err), zap.String("key", key))
		return uuid.Nil, fmt.Errorf("corrupted userID data in redis for key %s: %w", key, err)
	}
	return userID, nil
}

// GetUserIDByAccessUUID retrieves the UserID associated with an AccessUUID.
func (r *redisTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	return r.getUserID(ctx, accessKey(accessUUID))
}

// GetUserIDByRefreshUUID retrieves the UserID associated with a RefreshUUID.
func (r *redisTokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	return r.getUserID(ctx, refreshKey(refreshUUID))
}

// DeleteTokens removes the specified token UUIDs and their set identifiers.
func (r *redisTokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	var keysToDelete []string
	var identifiers []interface{}
	if accessUUID != "" {
		keysToDelete = append(keysToDelete, accessKey(accessUUID))
		identifiers = append(identifiers, fmt.Sprintf("access:%s", accessUUID))
	}
	if refreshUUID != "" {
		keysToDelete = append(keysToDelete, refreshKey(refreshUUID))
		identifiers = append(identifiers, fmt.Sprintf("refresh:%s", refreshUUID))
	}
	if len(keysToDelete) == 0 {
		r.logger.Warn("DeleteTokens called with no UUIDs")
		return 0, nil
	}

	pipe := r.client.Pipeline()
	delCmd := pipe.Del(ctx, keysToDelete...)
	pipe.SRem(ctx, userSetKey(userID), identifiers...)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete tokens from redis", zap.Error(err), zap.String("userID", userID.String()))
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}
	deleted, _ := delCmd.Result()
	return deleted, nil
}

// DeleteTokensByUserID removes all tokens associated with a user via the user set.
func (r *redisTokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := r.logger.With(zap.String("userID", userID.String()))
	setKey := userSetKey(userID)

	identifiers, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		log.Error("Failed to get token identifiers from user set", zap.Error(err))
		return 0, fmt.Errorf("failed to retrieve token identifiers for user %s: %w", userID, err)
	}

	keysToDelete := make([]string, 0, len(identifiers)+1)
	for _, identifier := range identifiers {
		switch {
		case len(identifier) > 7 && identifier[:7] == "access:":
			keysToDelete = append(keysToDelete, accessKey(identifier[7:]))
		case len(identifier) > 8 && identifier[:8] == "refresh:":
			keysToDelete = append(keysToDelete, refreshKey(identifier[8:]))
		default:
			log.Warn("Malformed token identifier found in user set", zap.String("identifier", identifier))
		}
	}
	keysToDelete = append(keysToDelete, setKey)

	deleted, err := r.client.Del(ctx, keysToDelete...).Result()
	if err != nil {
		log.Error("Failed to delete user tokens", zap.Error(err))
		return 0, fmt.Errorf("failed to delete tokens for user %s: %w", userID, err)
	}
	log.Info("Deleted tokens for user", zap.Int64("deletedKeys", deleted))
	return deleted, nil
}
