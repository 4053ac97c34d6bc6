package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/settings"
)

// maxCommentLength ограничивает размер отзыва посетителя.
const maxCommentLength = 4000

// FeedbackService определяет прием и модерацию отзывов посетителей.
type FeedbackService interface {
	// Submit принимает анонимный отзыв; churchID may be nil для отзыва о сайте.
	Submit(ctx context.Context, churchID *int64, content string) (*models.Comment, error)
	// ListPending возвращает отзывы, ожидающие модерации.
	ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, error)
	// ListForChurch возвращает одобренные отзывы для публичной страницы церкви.
	ListForChurch(ctx context.Context, churchID int64) ([]*models.Comment, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	// RecordSystemNote создает системную запись аудита, привязанную к церкви.
	RecordSystemNote(ctx context.Context, churchID int64, userID uuid.UUID, content string) error
}

var _ FeedbackService = (*feedbackServiceImpl)(nil)

type feedbackServiceImpl struct {
	commentRepo interfaces.CommentRepository
	provider    *settings.Provider
	publisher   interfaces.EventPublisher
	logger      *zap.Logger
}

// NewFeedbackService создает сервис отзывов. publisher может быть nil.
func NewFeedbackService(commentRepo interfaces.CommentRepository, provider *settings.Provider, publisher interfaces.EventPublisher, logger *zap.Logger) FeedbackService {
	return &feedbackServiceImpl{
		commentRepo: commentRepo,
		provider:    provider,
		publisher:   publisher,
		logger:      logger.Named("FeedbackService"),
	}
}

// Submit принимает отзыв посетителя в статусе pending.
func (s *feedbackServiceImpl) Submit(ctx context.Context, churchID *int64, content string) (*models.Comment, error) {
	if !s.provider.CommentsEnabled(ctx) {
		s.logger.Warn("Feedback submission while comments are disabled")
		return nil, models.ErrForbidden
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrEmptyComment
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("comment exceeds %d characters: %w", maxCommentLength, models.ErrInvalidInput)
	}

	comment := &models.Comment{
		ChurchID: churchID,
		Content:  content,
		Type:     models.CommentTypeUser,
		Status:   models.CommentPending,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to create comment", zap.Error(err))
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// Уведомление модераторов; сбой брокера не роняет прием отзыва
	if s.publisher != nil {
		if err := s.publisher.PublishFeedbackReceived(ctx, comment.UUID.String(), churchID); err != nil {
			s.logger.Warn("Failed to publish feedback event", zap.String("commentUUID", comment.UUID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Feedback received", zap.String("commentUUID", comment.UUID.String()))
	return comment, nil
}

// ListPending возвращает отзывы, ожидающие модерации.
func (s *feedbackServiceImpl) ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.ListByStatus(ctx, models.CommentPending, limit, offset)
}

// ListForChurch возвращает одобренные отзывы церкви.
func (s *feedbackServiceImpl) ListForChurch(ctx context.Context, churchID int64) ([]*models.Comment, error) {
	return s.commentRepo.ListByChurch(ctx, churchID, true)
}

// Approve публикует отзыв.
func (s *feedbackServiceImpl) Approve(ctx context.Context, id int64) error {
	if err := s.commentRepo.UpdateStatus(ctx, id, models.CommentApproved); err != nil {
		return err
	}
	s.logger.Info("Comment approved", zap.Int64("id", id))
	return nil
}

// Reject скрывает отзыв, сохраняя его для истории.
func (s *feedbackServiceImpl) Reject(ctx context.Context, id int64) error {
	if err := s.commentRepo.UpdateStatus(ctx, id, models.CommentRejected); err != nil {
		return err
	}
	s.logger.Info("Comment rejected", zap.Int64("id", id))
	return nil
}

// Delete безвозвратно удаляет отзыв.
func (s *feedbackServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Comment deleted", zap.Int64("id", id))
	return nil
}

// RecordSystemNote пишет системную заметку аудита от имени пользователя.
func (s *feedbackServiceImpl) RecordSystemNote(ctx context.Context, churchID int64, userID uuid.UUID, content string) error {
	note := &models.Comment{
		ChurchID: &churchID,
		UserID:   &userID,
		Content:  content,
		Type:     models.CommentTypeSystem,
		Status:   models.CommentApproved,
	}
	if err := s.commentRepo.Create(ctx, note); err != nil {
		s.logger.Error("Failed to record system note", zap.Int64("churchID", churchID), zap.Error(err))
		return fmt.Errorf("failed to record system note: %w", err)
	}
	return nil
}
