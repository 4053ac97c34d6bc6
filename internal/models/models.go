package models

import (
	"time"

	"github.com/google/uuid"
)

// ChurchStatus определяет статус листинга церкви в справочнике.
type ChurchStatus string

const (
	StatusListed      ChurchStatus = "Listed"
	StatusReadyToList ChurchStatus = "Ready to list"
	StatusAssess      ChurchStatus = "Assess"
	StatusNeedsData   ChurchStatus = "Needs data"
	StatusUnlisted    ChurchStatus = "Unlisted"
	StatusHeretical   ChurchStatus = "Heretical"
	StatusClosed      ChurchStatus = "Closed"
)

// PubliclyVisible сообщает, показывается ли церковь с этим статусом на публичных страницах.
func (s ChurchStatus) PubliclyVisible() bool {
	return s == StatusListed || s == StatusUnlisted
}

// Valid сообщает, является ли значение одним из известных статусов.
func (s ChurchStatus) Valid() bool {
	switch s {
	case StatusListed, StatusReadyToList, StatusAssess, StatusNeedsData,
		StatusUnlisted, StatusHeretical, StatusClosed:
		return true
	}
	return false
}

// County — округ региона, по которому группируются церкви.
type County struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Path       string    `db:"path" json:"path"`
	Population *int64    `db:"population" json:"population,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Affiliation — деноминация или сеть, к которой может принадлежать церковь.
type Affiliation struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Path         *string   `db:"path" json:"path,omitempty"`
	Status       string    `db:"status" json:"status"`
	Website      *string   `db:"website" json:"website,omitempty"`
	PublicNotes  *string   `db:"public_notes" json:"publicNotes,omitempty"`
	PrivateNotes *string   `db:"private_notes" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Church — основная сущность справочника.
type Church struct {
	ID               int64        `db:"id" json:"id"`
	Name             string       `db:"name" json:"name"`
	Path             *string      `db:"path" json:"path,omitempty"`
	Status           ChurchStatus `db:"status" json:"status"`
	CountyID         *int64       `db:"county_id" json:"countyId,omitempty"`
	GatheringAddress *string      `db:"gathering_address" json:"gatheringAddress,omitempty"`
	MailingAddress   *string      `db:"mailing_address" json:"-"`
	Latitude         *float64     `db:"latitude" json:"latitude,omitempty"`
	Longitude        *float64     `db:"longitude" json:"longitude,omitempty"`
	Website          *string      `db:"website" json:"website,omitempty"`
	Phone            *string      `db:"phone" json:"phone,omitempty"`
	Email            *string      `db:"email" json:"email,omitempty"`
	Facebook         *string      `db:"facebook" json:"facebook,omitempty"`
	Instagram        *string      `db:"instagram" json:"instagram,omitempty"`
	YouTube          *string      `db:"youtube" json:"youtube,omitempty"`
	Language         string       `db:"language" json:"language"`
	PublicNotes      *string      `db:"public_notes" json:"publicNotes,omitempty"`
	PrivateNotes     *string      `db:"private_notes" json:"-"`
	CreatedAt        time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`

	// Загружаются отдельными запросами, не колонки таблицы churches.
	Gatherings   []Gathering   `db:"-" json:"gatherings,omitempty"`
	Affiliations []Affiliation `db:"-" json:"affiliations,omitempty"`
	CountyName   *string       `db:"-" json:"countyName,omitempty"`
	CountyPath   *string       `db:"-" json:"countyPath,omitempty"`
}

// Gathering — время собрания церкви (например "Sunday 10:30 AM").
type Gathering struct {
	ID       int64   `db:"id" json:"id"`
	ChurchID int64   `db:"church_id" json:"churchId"`
	Time     string  `db:"time" json:"time"`
	Notes    *string `db:"notes" json:"notes,omitempty"`
}

// ChurchFilter задает условия выборки церквей.
// Нулевое значение означает "все церкви".
type ChurchFilter struct {
	CountyID   *int64
	Statuses   []ChurchStatus
	PublicOnly bool
	Search     string
}

// CommentType различает пользовательский отзыв и системную запись аудита.
type CommentType string

const (
	CommentTypeUser   CommentType = "user"
	CommentTypeSystem CommentType = "system"
)

// CommentStatus — состояние модерации отзыва.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Comment — отзыв пользователя или системная заметка, опционально привязанные к церкви.
type Comment struct {
	ID        int64         `db:"id" json:"id"`
	UUID      uuid.UUID     `db:"uuid" json:"uuid"`
	ChurchID  *int64        `db:"church_id" json:"churchId,omitempty"`
	UserID    *uuid.UUID    `db:"user_id" json:"userId,omitempty"`
	Content   string        `db:"content" json:"content"`
	Type      CommentType   `db:"type" json:"type"`
	Status    CommentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// Роли пользователей админки.
const (
	RoleAdmin       = "admin"
	RoleContributor = "contributor"
)

// User — учетная запись администратора или контрибьютора.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	GoogleID     *string   `db:"google_id" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Setting — строка таблицы settings (источник истины для SettingsCache).
type Setting struct {
	Key       string    `db:"key" json:"key"`
	Value     *string   `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TokenDetails содержит пару access/refresh токенов и их идентификаторы.
type TokenDetails struct {
	AccessToken  string
	RefreshToken string
	AccessUUID   string
	RefreshUUID  string
	AtExpires    int64
	RtExpires    int64
}

// SessionUser — данные пользователя, извлеченные из валидного токена сессии.
type SessionUser struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// Ключи контекста Gin для данных аутентифицированного пользователя.
type contextKey string

const (
	UserContextKey contextKey = "currentUser"
)
