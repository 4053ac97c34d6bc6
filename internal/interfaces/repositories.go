package interfaces

import (
	"context"

	"github.com/google/uuid"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// SettingsRepository определяет доступ к таблице settings (источник истины).
type SettingsRepository interface {
	// GetAll возвращает все настройки, отсортированные по ключу.
	GetAll(ctx context.Context) ([]*models.Setting, error)
	// Upsert создает или обновляет настройку.
	Upsert(ctx context.Context, key string, value *string) error
	// Delete удаляет настройку. Возвращает models.ErrNotFound, если ключа нет.
	Delete(ctx context.Context, key string) error
}

// ChurchRepository определяет доступ к церквям и их дочерним записям.
type ChurchRepository interface {
	List(ctx context.Context, filter models.ChurchFilter) ([]*models.Church, error)
	GetByID(ctx context.Context, id int64) (*models.Church, error)
	GetByPath(ctx context.Context, path string) (*models.Church, error)
	Create(ctx context.Context, church *models.Church) error
	Update(ctx context.Context, church *models.Church) error
	Delete(ctx context.Context, id int64) error
	// AttachChildren загружает собрания и аффилиации для набора церквей
	// батчами, не превышающими лимит SQL-параметров.
	AttachChildren(ctx context.Context, churches []*models.Church) error
	ReplaceGatherings(ctx context.Context, churchID int64, gatherings []models.Gathering) error
	ReplaceAffiliations(ctx context.Context, churchID int64, affiliationIDs []int64) error
}

// CountyRepository определяет доступ к округам.
type CountyRepository interface {
	List(ctx context.Context) ([]*models.County, error)
	GetByPath(ctx context.Context, path string) (*models.County, error)
	GetByID(ctx context.Context, id int64) (*models.County, error)
	Create(ctx context.Context, county *models.County) error
	Update(ctx context.Context, county *models.County) error
	Delete(ctx context.Context, id int64) error
}

// AffiliationRepository определяет доступ к аффилиациям.
type AffiliationRepository interface {
	List(ctx context.Context) ([]*models.Affiliation, error)
	GetByID(ctx context.Context, id int64) (*models.Affiliation, error)
	Create(ctx context.Context, affiliation *models.Affiliation) error
	Update(ctx context.Context, affiliation *models.Affiliation) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository определяет доступ к отзывам и системным заметкам.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByStatus(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error)
	ListByChurch(ctx context.Context, churchID int64, onlyApproved bool) ([]*models.Comment, error)
	UpdateStatus(ctx context.Context, id int64, status models.CommentStatus) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository определяет доступ к учетным записям.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

// TokenRepository определяет хранилище сессионных токенов (Redis).
type TokenRepository interface {
	SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error
	GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error)
	GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error)
	DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error)
	DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
