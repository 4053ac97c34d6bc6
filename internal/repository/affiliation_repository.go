package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

const affiliationColumns = `id, name, path, status, website, public_notes, private_notes, created_at, updated_at`

// Compile-time check to ensure pgAffiliationRepository implements AffiliationRepository
var _ interfaces.AffiliationRepository = (*pgAffiliationRepository)(nil)

type pgAffiliationRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgAffiliationRepository создает новый PostgreSQL-репозиторий аффилиаций.
func NewPgAffiliationRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.AffiliationRepository {
	return &pgAffiliationRepository{
		db:     db,
		logger: logger.Named("PgAffiliationRepo"),
	}
}

// List возвращает все аффилиации в алфавитном порядке.
func (r *pgAffiliationRepository) List(ctx context.Context) ([]*models.Affiliation, error) {
	var affiliations []*models.Affiliation
	query := `SELECT ` + affiliationColumns + ` FROM affiliations ORDER BY name`
	if err := pgxscan.Select(ctx, r.db, &affiliations, query); err != nil {
		r.logger.Error("Failed to list affiliations", zap.Error(err))
		return nil, fmt.Errorf("failed to list affiliations: %w", err)
	}
	return affiliations, nil
}

// GetByID возвращает аффилиацию по идентификатору.
func (r *pgAffiliationRepository) GetByID(ctx context.Context, id int64) (*models.Affiliation, error) {
	var affiliation models.Affiliation
	query := `SELECT ` + affiliationColumns + ` FROM affiliations WHERE id = $1`
	if err := pgxscan.Get(ctx, r.db, &affiliation, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get affiliation by id", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get affiliation by id %d: %w", id, err)
	}
	return &affiliation, nil
}

// Create вставляет новую аффилиацию.
func (r *pgAffiliationRepository) Create(ctx context.Context, affiliation *models.Affiliation) error {
	query := `INSERT INTO affiliations (name, path, status, website, public_notes, private_notes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, affiliation.Name, affiliation.Path, affiliation.Status,
		affiliation.Website, affiliation.PublicNotes, affiliation.PrivateNotes).
		Scan(&affiliation.ID, &affiliation.CreatedAt, &affiliation.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate affiliation", zap.String("name", affiliation.Name))
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to create affiliation", zap.Error(err), zap.String("name", affiliation.Name))
		return fmt.Errorf("failed to create affiliation: %w", err)
	}
	r.logger.Info("Affiliation created", zap.Int64("id", affiliation.ID), zap.String("name", affiliation.Name))
	return nil
}

// Update обновляет аффилиацию.
func (r *pgAffiliationRepository) Update(ctx context.Context, affiliation *models.Affiliation) error {
	query := `UPDATE affiliations SET name = $1, path = $2, status = $3, website = $4,
            public_notes = $5, private_notes = $6 WHERE id = $7`
	commandTag, err := r.db.Exec(ctx, query, affiliation.Name, affiliation.Path, affiliation.Status,
		affiliation.Website, affiliation.PublicNotes, affiliation.PrivateNotes, affiliation.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to update affiliation", zap.Error(err), zap.Int64("id", affiliation.ID))
		return fmt.Errorf("failed to update affiliation %d: %w", affiliation.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete удаляет аффилиацию и её связи с церквями (каскадно).
func (r *pgAffiliationRepository) Delete(ctx context.Context, id int64) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM affiliations WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete affiliation", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete affiliation %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
