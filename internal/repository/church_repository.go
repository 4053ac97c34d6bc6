package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

const churchColumns = `c.id, c.name, c.path, c.status, c.county_id, c.gathering_address, c.mailing_address,
       c.latitude, c.longitude, c.website, c.phone, c.email, c.facebook, c.instagram, c.youtube,
       c.language, c.public_notes, c.private_notes, c.created_at, c.updated_at`

// Compile-time check to ensure pgChurchRepository implements ChurchRepository
var _ interfaces.ChurchRepository = (*pgChurchRepository)(nil)

type pgChurchRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgChurchRepository создает новый PostgreSQL-репозиторий церквей.
func NewPgChurchRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ChurchRepository {
	return &pgChurchRepository{
		db:     db,
		logger: logger.Named("PgChurchRepo"),
	}
}

func scanChurch(row pgx.Row) (*models.Church, error) {
	ch := &models.Church{}
	err := row.Scan(&ch.ID, &ch.Name, &ch.Path, &ch.Status, &ch.CountyID, &ch.GatheringAddress,
		&ch.MailingAddress, &ch.Latitude, &ch.Longitude, &ch.Website, &ch.Phone, &ch.Email,
		&ch.Facebook, &ch.Instagram, &ch.YouTube, &ch.Language, &ch.PublicNotes, &ch.PrivateNotes,
		&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// List возвращает церкви по фильтру вместе с именами округов, отсортированные по округу и имени.
func (r *pgChurchRepository) List(ctx context.Context, filter models.ChurchFilter) ([]*models.Church, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CountyID != nil {
		conds = append(conds, "c.county_id = "+arg(*filter.CountyID))
	}
	if filter.PublicOnly {
		conds = append(conds, "c.status IN ('Listed', 'Unlisted')")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "c.status = ANY("+arg(statuses)+")")
	}
	if filter.Search != "" {
		conds = append(conds, "c.name ILIKE "+arg("%"+filter.Search+"%"))
	}

	query := `SELECT ` + churchColumns + `, co.name, co.path
        FROM churches c
        LEFT JOIN counties co ON co.id = c.county_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY co.name NULLS LAST, c.name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query churches", zap.Error(err))
		return nil, fmt.Errorf("failed to query churches: %w", err)
	}
	defer rows.Close()

	var churches []*models.Church
	for rows.Next() {
		ch := &models.Church{}
		err := rows.Scan(&ch.ID, &ch.Name, &ch.Path, &ch.Status, &ch.CountyID, &ch.GatheringAddress,
			&ch.MailingAddress, &ch.Latitude, &ch.Longitude, &ch.Website, &ch.Phone, &ch.Email,
			&ch.Facebook, &ch.Instagram, &ch.YouTube, &ch.Language, &ch.PublicNotes, &ch.PrivateNotes,
			&ch.CreatedAt, &ch.UpdatedAt, &ch.CountyName, &ch.CountyPath)
		if err != nil {
			r.logger.Error("Failed to scan church row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan church row: %w", err)
		}
		churches = append(churches, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate church rows: %w", err)
	}
	return churches, nil
}

// GetByID возвращает церковь по идентификатору.
func (r *pgChurchRepository) GetByID(ctx context.Context, id int64) (*models.Church, error) {
	query := `SELECT ` + churchColumns + ` FROM churches c WHERE c.id = $1`
	ch, err := scanChurch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Church not found by ID", zap.Int64("id", id))
			return nil, models.ErrChurchNotFound
		}
		r.logger.Error("Failed to get church by id", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get church by id: %w", err)
	}
	return ch, nil
}

// GetByPath возвращает церковь по её URL-пути.
func (r *pgChurchRepository) GetByPath(ctx context.Context, path string) (*models.Church, error) {
	query := `SELECT ` + churchColumns + ` FROM churches c WHERE c.path = $1`
	ch, err := scanChurch(r.db.QueryRow(ctx, query, path))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Church not found by path", zap.String("path", path))
			return nil, models.ErrChurchNotFound
		}
		r.logger.Error("Failed to get church by path", zap.Error(err), zap.String("path", path))
		return nil, fmt.Errorf("failed to get church by path: %w", err)
	}
	return ch, nil
}

// Create вставляет новую церковь и заполняет её ID.
func (r *pgChurchRepository) Create(ctx context.Context, church *models.Church) error {
	query := `INSERT INTO churches (name, path, status, county_id, gathering_address, mailing_address,
            latitude, longitude, website, phone, email, facebook, instagram, youtube, language,
            public_notes, private_notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, church.Name, church.Path, church.Status, church.CountyID,
		church.GatheringAddress, church.MailingAddress, church.Latitude, church.Longitude,
		church.Website, church.Phone, church.Email, church.Facebook, church.Instagram,
		church.YouTube, church.Language, church.PublicNotes, church.PrivateNotes).
		Scan(&church.ID, &church.CreatedAt, &church.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			r.logger.Warn("Attempted to create church with duplicate path", zap.Stringp("path", church.Path))
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to create church", zap.Error(err), zap.String("name", church.Name))
		return fmt.Errorf("failed to create church: %w", err)
	}
	r.logger.Info("Church created successfully", zap.Int64("id", church.ID), zap.String("name", church.Name))
	return nil
}

// Update обновляет все редактируемые поля церкви.
func (r *pgChurchRepository) Update(ctx context.Context, church *models.Church) error {
	query := `UPDATE churches SET name = $1, path = $2, status = $3, county_id = $4,
            gathering_address = $5, mailing_address = $6, latitude = $7, longitude = $8,
            website = $9, phone = $10, email = $11, facebook = $12, instagram = $13,
            youtube = $14, language = $15, public_notes = $16, private_notes = $17
        WHERE id = $18`
	commandTag, err := r.db.Exec(ctx, query, church.Name, church.Path, church.Status, church.CountyID,
		church.GatheringAddress, church.MailingAddress, church.Latitude, church.Longitude,
		church.Website, church.Phone, church.Email, church.Facebook, church.Instagram,
		church.YouTube, church.Language, church.PublicNotes, church.PrivateNotes, church.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyExists
		}
		r.logger.Error("Failed to update church", zap.Error(err), zap.Int64("id", church.ID))
		return fmt.Errorf("failed to update church %d: %w", church.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrChurchNotFound
	}
	r.logger.Info("Church updated successfully", zap.Int64("id", church.ID))
	return nil
}

// Delete удаляет церковь вместе с дочерними записями (каскадно).
func (r *pgChurchRepository) Delete(ctx context.Context, id int64) error {
	commandTag, err := r.db.Exec(ctx, `DELETE FROM churches WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete church", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete church %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrChurchNotFound
	}
	r.logger.Info("Church deleted", zap.Int64("id", id))
	return nil
}

// AttachChildren загружает собрания и аффилиации для набора церквей.
// Идентификаторы разбиваются на батчи, чтобы один запрос не превышал
// лимит SQL-параметров (поведение "batched IN clause").
func (r *pgChurchRepository) AttachChildren(ctx context.Context, churches []*models.Church) error {
	if len(churches) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Church, len(churches))
	ids := make([]int64, 0, len(churches))
	for _, ch := range churches {
		byID[ch.ID] = ch
		ids = append(ids, ch.ID)
	}

	for _, batch := range chunkIDs(ids, maxBatchParams) {
		if err := r.attachGatherings(ctx, batch, byID); err != nil {
			return err
		}
		if err := r.attachAffiliations(ctx, batch, byID); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgChurchRepository) attachGatherings(ctx context.Context, ids []int64, byID map[int64]*models.Church) error {
	query := `SELECT id, church_id, time, notes FROM church_gatherings
        WHERE church_id = ANY($1) ORDER BY church_id, id`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to query gatherings batch", zap.Error(err), zap.Int("batchSize", len(ids)))
		return fmt.Errorf("failed to query gatherings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Gathering
		if err := rows.Scan(&g.ID, &g.ChurchID, &g.Time, &g.Notes); err != nil {
			return fmt.Errorf("failed to scan gathering row: %w", err)
		}
		if ch, ok := byID[g.ChurchID]; ok {
			ch.Gatherings = append(ch.Gatherings, g)
		}
	}
	return rows.Err()
}

func (r *pgChurchRepository) attachAffiliations(ctx context.Context, ids []int64, byID map[int64]*models.Church) error {
	query := `SELECT ca.church_id, a.id, a.name, a.path, a.status, a.website, a.public_notes,
            a.private_notes, a.created_at, a.updated_at
        FROM church_affiliations ca
        JOIN affiliations a ON a.id = ca.affiliation_id
        WHERE ca.church_id = ANY($1)
        ORDER BY ca.church_id, ca.ord`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error("Failed to query affiliations batch", zap.Error(err), zap.Int("batchSize", len(ids)))
		return fmt.Errorf("failed to query church affiliations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var churchID int64
		var a models.Affiliation
		err := rows.Scan(&churchID, &a.ID, &a.Name, &a.Path, &a.Status, &a.Website,
			&a.PublicNotes, &a.PrivateNotes, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to scan church affiliation row: %w", err)
		}
		if ch, ok := byID[churchID]; ok {
			ch.Affiliations = append(ch.Affiliations, a)
		}
	}
	return rows.Err()
}

// ReplaceGatherings заменяет все собрания церкви на переданный набор.
func (r *pgChurchRepository) ReplaceGatherings(ctx context.Context, churchID int64, gatherings []models.Gathering) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM church_gatherings WHERE church_id = $1`, churchID); err != nil {
		return fmt.Errorf("failed to clear gatherings for church %d: %w", churchID, err)
	}
	for _, g := range gatherings {
		_, err := r.db.Exec(ctx,
			`INSERT INTO church_gatherings (church_id, time, notes) VALUES ($1, $2, $3)`,
			churchID, g.Time, g.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert gathering for church %d: %w", churchID, err)
		}
	}
	return nil
}

// ReplaceAffiliations заменяет аффилиации церкви, сохраняя порядок переданного среза.
func (r *pgChurchRepository) ReplaceAffiliations(ctx context.Context, churchID int64, affiliationIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM church_affiliations WHERE church_id = $1`, churchID); err != nil {
		return fmt.Errorf("failed to clear affiliations for church %d: %w", churchID, err)
	}
	for i, affID := range affiliationIDs {
		_, err := r.db.Exec(ctx,
			`INSERT INTO church_affiliations (church_id, affiliation_id, ord) VALUES ($1, $2, $3)`,
			churchID, affID, i)
		if err != nil {
			return fmt.Errorf("failed to link affiliation %d to church %d: %w", affID, churchID, err)
		}
	}
	return nil
}
