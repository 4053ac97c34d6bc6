package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

const commentColumns = `id, uuid, church_id, user_id, content, type, status, created_at, updated_at`

// Compile-time check to ensure pgCommentRepository implements CommentRepository
var _ interfaces.CommentRepository = (*pgCommentRepository)(nil)

type pgCommentRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgCommentRepository создает новый PostgreSQL-репозиторий отзывов.
func NewPgCommentRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CommentRepository {
	return &pgCommentRepository{
		db:     db,
		logger: logger.Named("PgCommentRepo"),
	}
}

// Create вставляет новый отзыв и заполняет его ID и UUID.
func (r *pgCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (church_id, user_id, content, type, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, uuid, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, comment.ChurchID, comment.UserID, comment.Content,
		comment.Type, comment.Status).
		Scan(&comment.ID, &comment.UUID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create comment", zap.Error(err))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	r.logger.Info("Comment created", zap.Int64("id", comment.ID), zap.String("uuid", comment.UUID.String()))
	return nil
}

// ListByStatus возвращает страницу отзывов с данным статусом, новые сверху.
func (r *pgCommentRepository) ListByStatus(ctx context.Context, status models.CommentStatus, limit, offset int) ([]*models.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	var comments []*models.Comment
	query := `SELECT ` + commentColumns + ` FROM comments
        WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := pgxscan.Select(ctx, r.db, &comments, query, status, limit, offset); err != nil {
		r.logger.Error("Failed to list comments by status", zap.Error(err), zap.String("status", string(status)))
		return nil, fmt.Errorf("failed to list comments by status %s: %w", status, err)
	}
	return comments, nil
}

// ListByChurch возвращает отзывы для церкви, старые сверху.
func (r *pgCommentRepository) ListByChurch(ctx context.Context, churchID int64, onlyApproved bool) ([]*models.Comment, error) {
	var comments []*models.Comment
	query := `SELECT ` + commentColumns + ` FROM comments WHERE church_id = $1`
	args := []any{churchID}
	if onlyApproved {
		query += ` AND status = $2`
		args = append(args, models.CommentApproved)
	}
	query += ` ORDER BY created_at ASC`
	if err := pgxscan.Select(ctx, r.db, &comments, query, args...); err != nil {
		r.logger.Error("Failed to list comments by church", zap.Error(err), zap.Int64("churchID", churchID))
		return nil, fmt.Errorf("failed to list comments for church %d: %w", churchID, err)
	}
	return comments, nil
}

// UpdateStatus переводит отзыв в новое состояние модерации.
func (r *pgCommentRepository) UpdateStatus(ctx context.Context, id int64, status models.CommentStatus) error {
	commandTag, err := r.db.Exec(ctx, `UPDATE comments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		r.logger.Error("Failed to update comment status", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to update comment %d status: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrCommentNotFound
	}
	r.logger.Info("Comment status updated", zap.Int64("id", id), zap.String("status", string(status)))
	return nil
}

// Delete удаляет отзыв.
func (r *pgCommentRepository) Delete(ctx context.Context, id int64) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete comment", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrCommentNotFound
	}
	return nil
}
