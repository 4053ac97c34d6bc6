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

const (
	listCountiesQuery    = `SELECT id, name, path, population, created_at, updated_at FROM counties ORDER BY name`
	getCountyByPathQuery = `SELECT id, name, path, population, created_at, updated_at FROM counties WHERE path = $1`
	getCountyByIDQuery   = `SELECT id, name, path, population, created_at, updated_at FROM counties WHERE id = $1`
)

// Compile-time check to ensure pgCountyRepository implements CountyRepository
var _ interfaces.CountyRepository = (*pgCountyRepository)(nil)

type pgCountyRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgCountyRepository создает новый PostgreSQL-репозиторий округов.
func NewPgCountyRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CountyRepository {
	return &pgCountyRepository{
		db:     db,
		logger: logger.Named("PgCountyRepo"),
	}
}

// List возвращает все округа в алфавитном порядке.
func (r *pgCountyRepository) List(ctx context.Context) ([]*models.County, error) {
	var counties []*models.County
	if err := pgxscan.Select(ctx, r.db, &counties, listCountiesQuery); err != nil {
		r.logger.Error("Failed to list counties", zap.Error(err))
		return nil, fmt.Errorf("failed to list counties: %w", err)
	}
	return counties, nil
}

// GetByPath возвращает округ по URL-пути.
func (r *pgCountyRepository) GetByPath(ctx context.Context, path string) (*models.County, error) {
	var county models.County
	if err := pgxscan.Get(ctx, r.db, &county, getCountyByPathQuery, path); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCountyNotFound
		}
		r.logger.Error("Failed to get county by path", zap.Error(err), zap.String("path", path))
		return nil, fmt.Errorf("failed to get county by path %s: %w", path, err)
	}
	return &county, nil
}

// GetByID возвращает округ по идентификатору.
func (r *pgCountyRepository) GetByID(ctx context.Context, id int64) (*models.County, error) {
	var county models.County
	if err := pgxscan.Get(ctx, r.db, &county, getCountyByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCountyNotFound
		}
		r.logger.Error("Failed to get county by id", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get county by id %d: %w", id, err)
	}
	return &county, nil
}

// Create вставляет новый округ.
func (r *pgCountyRepository) Create(ctx context.Context, county *models.County) error {
	query := `INSERT INTO counties (name, path, population) VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, county.Name, county.Path, county.Population).
		Scan(&county.ID, &county.CreatedAt, &county.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate county", zap.String("name", county.Name))
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to create county", zap.Error(err), zap.String("name", county.Name))
		return fmt.Errorf("failed to create county: %w", err)
	}
	r.logger.Info("County created", zap.Int64("id", county.ID), zap.String("name", county.Name))
	return nil
}

// Update обновляет округ.
func (r *pgCountyRepository) Update(ctx context.Context, county *models.County) error {
	query := `UPDATE counties SET name = $1, path = $2, population = $3 WHERE id = $4`
	commandTag, err := r.db.Exec(ctx, query, county.Name, county.Path, county.Population, county.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to update county", zap.Error(err), zap.Int64("id", county.ID))
		return fmt.Errorf("failed to update county %d: %w", county.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrCountyNotFound
	}
	return nil
}

// Delete удаляет округ. Церкви округа остаются с county_id = NULL.
func (r *pgCountyRepository) Delete(ctx context.Context, id int64) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM counties WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete county", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete county %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrCountyNotFound
	}
	return nil
}
