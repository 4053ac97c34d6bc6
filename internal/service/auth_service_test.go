package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/config"
	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service/mocks"
)

// Тесты для hashPassword и checkPasswordHash

func TestHashAndCheckPassword(t *testing.T) {
	password := "mysecretpassword"

	hashedPassword, err := hashPassword(password)
	require.NoError(t, err, "hashPassword should not return an error")
	require.NotEmpty(t, hashedPassword, "hashPassword should return a non-empty string")
	assert.NotEqual(t, password, hashedPassword, "Hashed password should not be equal to the original password")

	assert.True(t, checkPasswordHash(password, hashedPassword), "checkPasswordHash should return true for correct password")
	assert.False(t, checkPasswordHash("wrongpassword", hashedPassword), "checkPasswordHash should return false for incorrect password")
	assert.False(t, checkPasswordHash(password, "not-a-bcrypt-hash"), "checkPasswordHash should return false for invalid hash format")
}

func newTestAuthService(userRepo *mocks.UserRepository, tokenRepo *mocks.TokenRepository) *authServiceImpl {
	cfg := &config.Config{
		JWTSecret:       "test-jwt-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return NewAuthService(userRepo, tokenRepo, cfg, zap.NewNop()).(*authServiceImpl)
}

func TestCreateTokens_RoundTrip(t *testing.T) {
	s := newTestAuthService(new(mocks.UserRepository), new(mocks.TokenRepository))
	user := &models.User{
		ID:       uuid.New(),
		Username: "admin",
		Role:     models.RoleAdmin,
	}

	td, err := s.createTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, td.AccessToken)
	require.NotEmpty(t, td.RefreshToken)
	assert.NotEqual(t, td.AccessUUID, td.RefreshUUID)

	// Подписанный access-токен должен парситься обратно в те же claims
	claims, err := s.parseToken(td.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, td.AccessUUID, claims.ID)
}

func TestParseToken_InvalidSignature(t *testing.T) {
	s := newTestAuthService(new(mocks.UserRepository), new(mocks.TokenRepository))
	user := &models.User{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}

	td, err := s.createTokens(user)
	require.NoError(t, err)

	// Токен, подписанный другим секретом, должен отклоняться
	other := newTestAuthService(new(mocks.UserRepository), new(mocks.TokenRepository))
	other.cfg.JWTSecret = "different-secret"
	_, err = other.parseToken(td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	_, err = s.parseToken("garbage.token.value")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}

func TestVerifyAccessToken_RevokedToken(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	tokenRepo := new(mocks.TokenRepository)
	s := newTestAuthService(userRepo, tokenRepo)

	user := &models.User{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}
	td, err := s.createTokens(user)
	require.NoError(t, err)

	// Токен подписан корректно, но отозван (отсутствует в хранилище)
	tokenRepo.On("GetUserIDByAccessUUID", mock.Anything, td.AccessUUID).
		Return(uuid.Nil, models.ErrTokenNotFound)

	_, err = s.VerifyAccessToken(context.Background(), td.AccessToken)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
	tokenRepo.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	userRepo := new(mocks.UserRepository)
	tokenRepo := new(mocks.TokenRepository)
	s := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	// Несуществующий пользователь
	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, models.ErrUserNotFound).Once()
	_, err := s.Login(ctx, "ghost", "whatever")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Неверный пароль
	hash, err := hashPassword("correct-password")
	require.NoError(t, err)
	userRepo.On("GetByUsername", ctx, "admin").Return(&models.User{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: &hash,
		Role:         models.RoleAdmin,
	}, nil).Once()
	_, err = s.Login(ctx, "admin", "wrong-password")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Пользователь только с Google-входом (без пароля)
	userRepo.On("GetByUsername", ctx, "google-only").Return(&models.User{
		ID:       uuid.New(),
		Username: "google-only",
		Role:     models.RoleContributor,
	}, nil).Once()
	_, err = s.Login(ctx, "google-only", "anything")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
