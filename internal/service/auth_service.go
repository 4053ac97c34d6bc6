package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/aaronshaf/churches-sub000/internal/config"
	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

// Claims — JWT claims сессии администратора.
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

const tokenIssuer = "church-directory"

// AuthService определяет операции аутентификации админки.
type AuthService interface {
	// Register создает учетную запись с паролем.
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	// Login проверяет пароль и возвращает пару токенов.
	Login(ctx context.Context, username, password string) (*models.TokenDetails, error)
	// Logout удаляет токены сессии из хранилища.
	Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error
	// Refresh выпускает новую пару токенов по валидному refresh-токену.
	Refresh(ctx context.Context, refreshToken string) (*models.TokenDetails, error)
	// VerifyAccessToken проверяет подпись, срок и наличие токена в хранилище.
	VerifyAccessToken(ctx context.Context, token string) (*models.SessionUser, error)
	// GoogleAuthURL возвращает URL для входа через Google; пустая строка = выключено.
	GoogleAuthURL(state string) string
	// LoginWithGoogle обменивает код OAuth на токены, создавая пользователя при первом входе.
	LoginWithGoogle(ctx context.Context, code string) (*models.TokenDetails, error)
}

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cfg       *config.Config
	oauth     *oauth2.Config
	logger    *zap.Logger
}

// NewAuthService создает сервис аутентификации.
// Google OAuth включается только при заполненных реквизитах клиента.
func NewAuthService(userRepo interfaces.UserRepository, tokenRepo interfaces.TokenRepository, cfg *config.Config, logger *zap.Logger) AuthService {
	var oauth *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return &authServiceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		oauth:     oauth,
		logger:    logger.Named("AuthService"),
	}
}

// Register создает нового пользователя.
func (s *authServiceImpl) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	logFields := []zap.Field{zap.String("username", username), zap.String("email", email)}
	s.logger.Info("Registering new user", logFields...)

	if _, err := mail.ParseAddress(email); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("invalid email format: %w", models.ErrInvalidCredentials)
	}
	if username == "" || password == "" {
		s.logger.Warn("Registration attempt with empty username or password", logFields...)
		return nil, models.ErrInvalidCredentials
	}

	// Проверка существования пользователя по username
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing username during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing username: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Registration attempt for existing username", logFields...)
		return nil, models.ErrUserAlreadyExists
	}

	// Проверка существования пользователя по email
	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing email during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing email: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Registration attempt for existing email", logFields...)
		return nil, models.ErrEmailAlreadyExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		Role:         models.RoleContributor,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, models.ErrUserAlreadyExists) && !errors.Is(err, models.ErrEmailAlreadyExists) {
			s.logger.Error("Failed to create user via repository", append(logFields, zap.Error(err))...)
		}
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login аутентифицирует пользователя по паролю и возвращает пару токенов.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*models.TokenDetails, error) {
	s.logger.Info("Login attempt", zap.String("username", username))
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("username", username))
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("Login failed: error getting user from repository", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// У пользователей, входящих только через Google, пароля нет
	if user.PasswordHash == nil || !checkPasswordHash(password, *user.PasswordHash) {
		s.logger.Warn("Login failed: invalid password", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	td, err := s.createTokens(user)
	if err != nil {
		s.logger.Error("Failed to create tokens during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}
	if err := s.tokenRepo.SetToken(ctx, user.ID, td); err != nil {
		s.logger.Error("Failed to save token details during login", zap.Error(err), zap.String("userID", user.ID.String()))
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}

	s.logger.Info("User logged in successfully", zap.String("userID", user.ID.String()))
	return td, nil
}

// Logout удаляет токены сессии. Успех, даже если токены уже истекли.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) error {
	log := s.logger.With(zap.String("accessUUID", accessUUID), zap.String("refreshUUID", refreshUUID))
	log.Debug("Attempting to logout user by deleting tokens")

	var deletedCount int64
	var err error
	if accessUUID == "" && refreshUUID == "" {
		// Полный выход: отзываем все сессии пользователя
		deletedCount, err = s.tokenRepo.DeleteTokensByUserID(ctx, userID)
	} else {
		deletedCount, err = s.tokenRepo.DeleteTokens(ctx, userID, accessUUID, refreshUUID)
	}
	if err != nil {
		// Не возвращаем ошибку клиенту: токены могли уже быть удалены
		log.Error("Failed to delete tokens during logout", zap.Error(err))
	}
	if deletedCount > 0 {
		log.Info("Tokens deleted successfully during logout", zap.Int64("deletedCount", deletedCount))
	} else {
		log.Info("No tokens found to delete during logout (already expired or logged out)")
	}
	return nil
}

// Refresh выпускает новую пару токенов по refresh-токену.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshTokenString string) (*models.TokenDetails, error) {
	s.logger.Info("Token refresh attempt") // Не логируем сам токен
	claims, err := s.parseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}

	refreshUUID := claims.ID
	userID, err := s.tokenRepo.GetUserIDByRefreshUUID(ctx, refreshUUID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Warn("Refresh attempt with revoked token", zap.String("refreshUUID", refreshUUID))
			return nil, models.ErrTokenNotFound
		}
		s.logger.Error("Error checking refresh token existence", zap.Error(err), zap.String("refreshUUID", refreshUUID))
		return nil, fmt.Errorf("error checking refresh token existence: %w", err)
	}
	if userID != claims.UserID {
		s.logger.Error("Refresh token user ID mismatch",
			zap.String("tokenUserID", claims.UserID.String()),
			zap.String("repoUserID", userID.String()))
		return nil, models.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("User from valid refresh token not found", zap.String("userID", userID.String()))
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to get user for refresh: %w", err)
	}

	newTd, err := s.createTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create new tokens during refresh: %w", err)
	}

	// Старая пара отзывается; сбой удаления не критичен для пользователя
	if _, delErr := s.tokenRepo.DeleteTokens(ctx, userID, "", refreshUUID); delErr != nil {
		s.logger.Error("Non-critical: failed to delete old refresh token", zap.Error(delErr), zap.String("refreshUUID", refreshUUID))
	}

	if err := s.tokenRepo.SetToken(ctx, userID, newTd); err != nil {
		s.logger.Error("Failed to save new token details during refresh", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("failed to save new token details: %w", err)
	}

	s.logger.Info("Token refreshed successfully", zap.String("userID", userID.String()))
	return newTd, nil
}

// VerifyAccessToken проверяет access-токен и его наличие в хранилище.
func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.SessionUser, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	if _, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, claims.ID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token not found in store (revoked/logged out)", zap.String("accessUUID", claims.ID))
			return nil, models.ErrTokenInvalid
		}
		s.logger.Error("Error checking access token existence", zap.Error(err), zap.String("accessUUID", claims.ID))
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}

	return &models.SessionUser{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// GoogleAuthURL возвращает URL страницы согласия Google.
func (s *authServiceImpl) GoogleAuthURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// googleUserInfo — ответ эндпоинта userinfo Google.
type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// LoginWithGoogle обменивает код авторизации на пару токенов.
// При первом входе создается учетная запись контрибьютора.
func (s *authServiceImpl) LoginWithGoogle(ctx context.Context, code string) (*models.TokenDetails, error) {
	if s.oauth == nil {
		return nil, models.ErrUnauthorized
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("Google OAuth code exchange failed", zap.Error(err))
		return nil, models.ErrInvalidCredentials
	}

	info, err := s.fetchGoogleUserInfo(ctx, token)
	if err != nil {
		s.logger.Error("Failed to fetch Google user info", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if !info.EmailVerified {
		s.logger.Warn("Google login with unverified email", zap.String("email", info.Email))
		return nil, models.ErrInvalidCredentials
	}

	email := strings.ToLower(info.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, models.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
		// Первый вход: создаем учетную запись без пароля
		user = &models.User{
			Username: email,
			Email:    email,
			Role:     models.RoleContributor,
			GoogleID: &info.Sub,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			s.logger.Error("Failed to create user from Google login", zap.Error(err), zap.String("email", email))
			return nil, err
		}
		s.logger.Info("User created from Google login", zap.String("userID", user.ID.String()), zap.String("email", email))
	}

	td, err := s.createTokens(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens: %w", err)
	}
	if err := s.tokenRepo.SetToken(ctx, user.ID, td); err != nil {
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}

	s.logger.Info("User logged in via Google", zap.String("userID", user.ID.String()))
	return td, nil
}

func (s *authServiceImpl) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get("https://openidconnect.googleapis.com/v1/userinfo")
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &info, nil
}

// parseToken проверяет подпись и срок токена, возвращая его claims.
func (s *authServiceImpl) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Token verification failed: expired")
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Token verification failed: malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Error("Failed to parse token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		s.logger.Warn("Token verification failed (invalid claims type or signature)")
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// hashPassword генерирует bcrypt-хеш пароля.
func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash сравнивает пароль с сохраненным хешем.
func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// createTokens генерирует новую пару access/refresh токенов.
func (s *authServiceImpl) createTokens(user *models.User) (*models.TokenDetails, error) {
	now := time.Now()
	td := &models.TokenDetails{
		AccessUUID:  uuid.New().String(),
		RefreshUUID: uuid.New().String(),
		AtExpires:   now.Add(s.cfg.AccessTokenTTL).Unix(),
		RtExpires:   now.Add(s.cfg.RefreshTokenTTL).Unix(),
	}

	sign := func(tokenUUID string, expires int64) (string, error) {
		claims := &Claims{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        tokenUUID,
				Subject:   user.ID.String(),
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Unix(expires, 0)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	}

	var err error
	if td.AccessToken, err = sign(td.AccessUUID, td.AtExpires); err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	if td.RefreshToken, err = sign(td.RefreshUUID, td.RtExpires); err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return td, nil
}
