// Package mocks содержит testify-моки репозиториев и издателя событий
// для юнит-тестов сервисного слоя.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// Mock CommentRepository
type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *CommentRepository) ListByStatus(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	args := m.Called(ctx, status, limit, offset)
	comments, _ := args.Get(0).([]*models.Comment)
	return comments, args.Error(1)
}

func (m *CommentRepository) ListByChurch(ctx context.Context, churchID int64, onlyApproved bool) ([]*models.Comment, error) {
	args := m.Called(ctx, churchID, onlyApproved)
	comments, _ := args.Get(0).([]*models.Comment)
	return comments, args.Error(1)
}

func (m *CommentRepository) UpdateStatus(ctx context.Context, id int64, status models.CommentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *CommentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock ChurchRepository
type ChurchRepository struct {
	mock.Mock
}

func (m *ChurchRepository) List(ctx context.Context, filter models.ChurchFilter) ([]*models.Church, error) {
	args := m.Called(ctx, filter)
	churches, _ := args.Get(0).([]*models.Church)
	return churches, args.Error(1)
}

func (m *ChurchRepository) GetByID(ctx context.Context, id int64) (*models.Church, error) {
	args := m.Called(ctx, id)
	church, _ := args.Get(0).(*models.Church)
	return church, args.Error(1)
}

func (m *ChurchRepository) GetByPath(ctx context.Context, path string) (*models.Church, error) {
	args := m.Called(ctx, path)
	church, _ := args.Get(0).(*models.Church)
	return church, args.Error(1)
}

func (m *ChurchRepository) Create(ctx context.Context, church *models.Church) error {
	args := m.Called(ctx, church)
	return args.Error(0)
}

func (m *ChurchRepository) Update(ctx context.Context, church *models.Church) error {
	args := m.Called(ctx, church)
	return args.Error(0)
}

func (m *ChurchRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ChurchRepository) AttachChildren(ctx context.Context, churches []*models.Church) error {
	args := m.Called(ctx, churches)
	return args.Error(0)
}

func (m *ChurchRepository) ReplaceGatherings(ctx context.Context, churchID int64, gatherings []models.Gathering) error {
	args := m.Called(ctx, churchID, gatherings)
	return args.Error(0)
}

func (m *ChurchRepository) ReplaceAffiliations(ctx context.Context, churchID int64, affiliationIDs []int64) error {
	args := m.Called(ctx, churchID, affiliationIDs)
	return args.Error(0)
}

// Mock CountyRepository
type CountyRepository struct {
	mock.Mock
}

func (m *CountyRepository) List(ctx context.Context) ([]*models.County, error) {
	args := m.Called(ctx)
	counties, _ := args.Get(0).([]*models.County)
	return counties, args.Error(1)
}

func (m *CountyRepository) GetByPath(ctx context.Context, path string) (*models.County, error) {
	args := m.Called(ctx, path)
	county, _ := args.Get(0).(*models.County)
	return county, args.Error(1)
}

func (m *CountyRepository) GetByID(ctx context.Context, id int64) (*models.County, error) {
	args := m.Called(ctx, id)
	county, _ := args.Get(0).(*models.County)
	return county, args.Error(1)
}

func (m *CountyRepository) Create(ctx context.Context, county *models.County) error {
	args := m.Called(ctx, county)
	return args.Error(0)
}

func (m *CountyRepository) Update(ctx context.Context, county *models.County) error {
	args := m.Called(ctx, county)
	return args.Error(0)
}

func (m *CountyRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock AffiliationRepository
type AffiliationRepository struct {
	mock.Mock
}

func (m *AffiliationRepository) List(ctx context.Context) ([]*models.Affiliation, error) {
	args := m.Called(ctx)
	affiliations, _ := args.Get(0).([]*models.Affiliation)
	return affiliations, args.Error(1)
}

func (m *AffiliationRepository) GetByID(ctx context.Context, id int64) (*models.Affiliation, error) {
	args := m.Called(ctx, id)
	affiliation, _ := args.Get(0).(*models.Affiliation)
	return affiliation, args.Error(1)
}

func (m *AffiliationRepository) Create(ctx context.Context, affiliation *models.Affiliation) error {
	args := m.Called(ctx, affiliation)
	return args.Error(0)
}

func (m *AffiliationRepository) Update(ctx context.Context, affiliation *models.Affiliation) error {
	args := m.Called(ctx, affiliation)
	return args.Error(0)
}

func (m *AffiliationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*models.User)
	return users, args.Error(1)
}

func (m *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

// Mock TokenRepository
type TokenRepository struct {
	mock.Mock
}

func (m *TokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	args := m.Called(ctx, userID, td)
	return args.Error(0)
}

func (m *TokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, accessUUID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *TokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	args := m.Called(ctx, refreshUUID)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *TokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	args := m.Called(ctx, userID, accessUUID, refreshUUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock EventPublisher
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishSettingsInvalidated(ctx context.Context, changedKey string) error {
	args := m.Called(ctx, changedKey)
	return args.Error(0)
}

func (m *EventPublisher) PublishFeedbackReceived(ctx context.Context, commentUUID string, churchID *int64) error {
	args := m.Called(ctx, commentUUID, churchID)
	return args.Error(0)
}

func (m *EventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
