package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service/mocks"
	"github.com/aaronshaf/churches-sub000/internal/settings"
	settingsmocks "github.com/aaronshaf/churches-sub000/internal/settings/mocks"
)

// newProviderForTest строит Provider поверх заданных строк настроек.
func newProviderForTest(rows []*models.Setting) *settings.Provider {
	repo := new(settingsmocks.SettingsRepository)
	repo.On("GetAll", mock.Anything).Return(rows, nil)
	kv := new(settingsmocks.KVStore)
	kv.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)
	kv.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cache := settings.NewCache(kv, repo, zap.NewNop())
	return settings.NewProvider(cache, zap.NewNop())
}

func TestFeedbackSubmit_Success(t *testing.T) {
	ctx := context.Background()
	commentRepo := new(mocks.CommentRepository)
	publisher := new(mocks.EventPublisher)

	churchID := int64(42)
	commentRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Comment) bool {
		return c.Status == models.CommentPending &&
			c.Type == models.CommentTypeUser &&
			c.Content == "Great church" &&
			c.ChurchID != nil && *c.ChurchID == churchID
	})).Return(nil)
	publisher.On("PublishFeedbackReceived", ctx, mock.Anything, &churchID).Return(nil)

	svc := NewFeedbackService(commentRepo, newProviderForTest(nil), publisher, zap.NewNop())
	comment, err := svc.Submit(ctx, &churchID, "  Great church  ")
	require.NoError(t, err)
	assert.Equal(t, models.CommentPending, comment.Status)

	commentRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestFeedbackSubmit_CommentsDisabled(t *testing.T) {
	disabled := "false"
	provider := newProviderForTest([]*models.Setting{
		{Key: settings.KeyCommentsEnabled, Value: &disabled},
	})
	commentRepo := new(mocks.CommentRepository) // Create вызываться не должен

	svc := NewFeedbackService(commentRepo, provider, nil, zap.NewNop())
	_, err := svc.Submit(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, models.ErrForbidden)
	commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFeedbackSubmit_EmptyContent(t *testing.T) {
	svc := NewFeedbackService(new(mocks.CommentRepository), newProviderForTest(nil), nil, zap.NewNop())
	_, err := svc.Submit(context.Background(), nil, "   \n\t ")
	assert.ErrorIs(t, err, models.ErrEmptyComment)
}

func TestFeedbackSubmit_TooLong(t *testing.T) {
	svc := NewFeedbackService(new(mocks.CommentRepository), newProviderForTest(nil), nil, zap.NewNop())
	_, err := svc.Submit(context.Background(), nil, strings.Repeat("a", maxCommentLength+1))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestFeedbackSubmit_PublisherFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	commentRepo := new(mocks.CommentRepository)
	commentRepo.On("Create", ctx, mock.Anything).Return(nil)
	publisher := new(mocks.EventPublisher)
	publisher.On("PublishFeedbackReceived", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewFeedbackService(commentRepo, newProviderForTest(nil), publisher, zap.NewNop())
	_, err := svc.Submit(ctx, nil, "still accepted")
	// Сбой брокера не должен ронять прием отзыва
	require.NoError(t, err)
}

func TestFeedbackModeration(t *testing.T) {
	ctx := context.Background()
	commentRepo := new(mocks.CommentRepository)
	commentRepo.On("UpdateStatus", ctx, int64(1), models.CommentApproved).Return(nil)
	commentRepo.On("UpdateStatus", ctx, int64(2), models.CommentRejected).Return(nil)
	commentRepo.On("Delete", ctx, int64(3)).Return(nil)

	svc := NewFeedbackService(commentRepo, newProviderForTest(nil), nil, zap.NewNop())
	require.NoError(t, svc.Approve(ctx, 1))
	require.NoError(t, svc.Reject(ctx, 2))
	require.NoError(t, svc.Delete(ctx, 3))
	commentRepo.AssertExpectations(t)
}
