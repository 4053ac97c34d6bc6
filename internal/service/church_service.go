package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/models"
)

// pathPattern — допустимый формат URL-пути церкви или округа.
var pathPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ChurchService определяет операции над каталогом церквей.
type ChurchService interface {
	// ListPublic возвращает публично видимые церкви с собраниями и аффилиациями.
	ListPublic(ctx context.Context, countyPath string) ([]*models.Church, error)
	// ListAll возвращает все церкви для админки, включая скрытые статусы.
	ListAll(ctx context.Context, filter models.ChurchFilter) ([]*models.Church, error)
	// GetByPath возвращает церковь по URL-пути вместе с дочерними записями.
	GetByPath(ctx context.Context, path string) (*models.Church, error)
	// GetByID возвращает церковь по идентификатору вместе с дочерними записями.
	GetByID(ctx context.Context, id int64) (*models.Church, error)
	Create(ctx context.Context, church *models.Church) error
	Update(ctx context.Context, church *models.Church) error
	Delete(ctx context.Context, id int64) error

	Counties(ctx context.Context) ([]*models.County, error)
	CountyByPath(ctx context.Context, path string) (*models.County, error)
	CountyByID(ctx context.Context, id int64) (*models.County, error)
	CreateCounty(ctx context.Context, county *models.County) error
	UpdateCounty(ctx context.Context, county *models.County) error
	DeleteCounty(ctx context.Context, id int64) error

	Affiliations(ctx context.Context) ([]*models.Affiliation, error)
	AffiliationByID(ctx context.Context, id int64) (*models.Affiliation, error)
	CreateAffiliation(ctx context.Context, affiliation *models.Affiliation) error
	UpdateAffiliation(ctx context.Context, affiliation *models.Affiliation) error
	DeleteAffiliation(ctx context.Context, id int64) error
}

var _ ChurchService = (*churchServiceImpl)(nil)

type churchServiceImpl struct {
	churchRepo      interfaces.ChurchRepository
	countyRepo      interfaces.CountyRepository
	affiliationRepo interfaces.AffiliationRepository
	logger          *zap.Logger
}

// NewChurchService создает сервис каталога.
func NewChurchService(
	churchRepo interfaces.ChurchRepository,
	countyRepo interfaces.CountyRepository,
	affiliationRepo interfaces.AffiliationRepository,
	logger *zap.Logger,
) ChurchService {
	return &churchServiceImpl{
		churchRepo:      churchRepo,
		countyRepo:      countyRepo,
		affiliationRepo: affiliationRepo,
		logger:          logger.Named("ChurchService"),
	}
}

// ListPublic возвращает публично видимые церкви, опционально в пределах округа.
func (s *churchServiceImpl) ListPublic(ctx context.Context, countyPath string) ([]*models.Church, error) {
	filter := models.ChurchFilter{PublicOnly: true}

	if countyPath != "" {
		county, err := s.countyRepo.GetByPath(ctx, countyPath)
		if err != nil {
			return nil, err
		}
		filter.CountyID = &county.ID
	}

	churches, err := s.churchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list churches: %w", err)
	}
	if err := s.churchRepo.AttachChildren(ctx, churches); err != nil {
		return nil, fmt.Errorf("failed to attach church children: %w", err)
	}
	return churches, nil
}

// ListAll возвращает церкви по произвольному фильтру админки.
func (s *churchServiceImpl) ListAll(ctx context.Context, filter models.ChurchFilter) ([]*models.Church, error) {
	churches, err := s.churchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list churches: %w", err)
	}
	if err := s.churchRepo.AttachChildren(ctx, churches); err != nil {
		return nil, fmt.Errorf("failed to attach church children: %w", err)
	}
	return churches, nil
}

// GetByPath возвращает церковь по URL-пути с дочерними записями.
func (s *churchServiceImpl) GetByPath(ctx context.Context, path string) (*models.Church, error) {
	church, err := s.churchRepo.GetByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.churchRepo.AttachChildren(ctx, []*models.Church{church}); err != nil {
		return nil, fmt.Errorf("failed to attach church children: %w", err)
	}
	return church, nil
}

// GetByID возвращает церковь по идентификатору с дочерними записями.
func (s *churchServiceImpl) GetByID(ctx context.Context, id int64) (*models.Church, error) {
	church, err := s.churchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.churchRepo.AttachChildren(ctx, []*models.Church{church}); err != nil {
		return nil, fmt.Errorf("failed to attach church children: %w", err)
	}
	return church, nil
}

// Create сохраняет новую церковь вместе с собраниями и аффилиациями.
func (s *churchServiceImpl) Create(ctx context.Context, church *models.Church) error {
	if err := s.validate(church); err != nil {
		return err
	}

	if err := s.churchRepo.Create(ctx, church); err != nil {
		s.logger.Error("Failed to create church", zap.String("name", church.Name), zap.Error(err))
		return err
	}
	if err := s.saveChildren(ctx, church); err != nil {
		return err
	}

	s.logger.Info("Church created", zap.Int64("id", church.ID), zap.String("name", church.Name))
	return nil
}

// Update сохраняет изменения церкви вместе с собраниями и аффилиациями.
func (s *churchServiceImpl) Update(ctx context.Context, church *models.Church) error {
	if err := s.validate(church); err != nil {
		return err
	}

	if err := s.churchRepo.Update(ctx, church); err != nil {
		s.logger.Error("Failed to update church", zap.Int64("id", church.ID), zap.Error(err))
		return err
	}
	if err := s.saveChildren(ctx, church); err != nil {
		return err
	}

	s.logger.Info("Church updated", zap.Int64("id", church.ID), zap.String("name", church.Name))
	return nil
}

// Delete удаляет церковь; дочерние записи каскадируются базой.
func (s *churchServiceImpl) Delete(ctx context.Context, id int64) error {
	if err := s.churchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Church deleted", zap.Int64("id", id))
	return nil
}

// Counties возвращает все округа.
func (s *churchServiceImpl) Counties(ctx context.Context) ([]*models.County, error) {
	return s.countyRepo.List(ctx)
}

// CountyByPath возвращает округ по URL-пути.
func (s *churchServiceImpl) CountyByPath(ctx context.Context, path string) (*models.County, error) {
	return s.countyRepo.GetByPath(ctx, path)
}

// CountyByID возвращает округ по идентификатору.
func (s *churchServiceImpl) CountyByID(ctx context.Context, id int64) (*models.County, error) {
	return s.countyRepo.GetByID(ctx, id)
}

// CreateCounty сохраняет новый округ.
func (s *churchServiceImpl) CreateCounty(ctx context.Context, county *models.County) error {
	if err := s.validateCounty(county); err != nil {
		return err
	}

	if err := s.countyRepo.Create(ctx, county); err != nil {
		s.logger.Error("Failed to create county", zap.String("name", county.Name), zap.Error(err))
		return err
	}

	s.logger.Info("County created", zap.Int64("id", county.ID), zap.String("name", county.Name))
	return nil
}

// UpdateCounty сохраняет изменения округа.
func (s *churchServiceImpl) UpdateCounty(ctx context.Context, county *models.County) error {
	if err := s.validateCounty(county); err != nil {
		return err
	}

	if err := s.countyRepo.Update(ctx, county); err != nil {
		s.logger.Error("Failed to update county", zap.Int64("id", county.ID), zap.Error(err))
		return err
	}

	s.logger.Info("County updated", zap.Int64("id", county.ID), zap.String("name", county.Name))
	return nil
}

// DeleteCounty удаляет округ; церкви округа остаются без county_id.
func (s *churchServiceImpl) DeleteCounty(ctx context.Context, id int64) error {
	if err := s.countyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("County deleted", zap.Int64("id", id))
	return nil
}

// Affiliations возвращает все аффилиации.
func (s *churchServiceImpl) Affiliations(ctx context.Context) ([]*models.Affiliation, error) {
	return s.affiliationRepo.List(ctx)
}

// AffiliationByID возвращает аффилиацию по идентификатору.
func (s *churchServiceImpl) AffiliationByID(ctx context.Context, id int64) (*models.Affiliation, error) {
	return s.affiliationRepo.GetByID(ctx, id)
}

// CreateAffiliation сохраняет новую аффилиацию.
func (s *churchServiceImpl) CreateAffiliation(ctx context.Context, affiliation *models.Affiliation) error {
	if err := s.validateAffiliation(affiliation); err != nil {
		return err
	}

	if err := s.affiliationRepo.Create(ctx, affiliation); err != nil {
		s.logger.Error("Failed to create affiliation", zap.String("name", affiliation.Name), zap.Error(err))
		return err
	}

	s.logger.Info("Affiliation created", zap.Int64("id", affiliation.ID), zap.String("name", affiliation.Name))
	return nil
}

// UpdateAffiliation сохраняет изменения аффилиации.
func (s *churchServiceImpl) UpdateAffiliation(ctx context.Context, affiliation *models.Affiliation) error {
	if err := s.validateAffiliation(affiliation); err != nil {
		return err
	}

	if err := s.affiliationRepo.Update(ctx, affiliation); err != nil {
		s.logger.Error("Failed to update affiliation", zap.Int64("id", affiliation.ID), zap.Error(err))
		return err
	}

	s.logger.Info("Affiliation updated", zap.Int64("id", affiliation.ID), zap.String("name", affiliation.Name))
	return nil
}

// DeleteAffiliation удаляет аффилиацию; связи с церквями каскадируются базой.
func (s *churchServiceImpl) DeleteAffiliation(ctx context.Context, id int64) error {
	if err := s.affiliationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Affiliation deleted", zap.Int64("id", id))
	return nil
}

func (s *churchServiceImpl) validate(church *models.Church) error {
	church.Name = strings.TrimSpace(church.Name)
	if church.Name == "" {
		return fmt.Errorf("church name is required: %w", models.ErrInvalidInput)
	}
	if church.Path != nil {
		trimmed := strings.TrimSpace(*church.Path)
		if trimmed == "" {
			church.Path = nil
		} else if !pathPattern.MatchString(trimmed) {
			return fmt.Errorf("invalid church path %q: %w", trimmed, models.ErrInvalidInput)
		} else {
			church.Path = &trimmed
		}
	}
	if !church.Status.Valid() {
		return fmt.Errorf("invalid church status %q: %w", church.Status, models.ErrInvalidInput)
	}
	return nil
}

func (s *churchServiceImpl) validateCounty(county *models.County) error {
	county.Name = strings.TrimSpace(county.Name)
	if county.Name == "" {
		return fmt.Errorf("county name is required: %w", models.ErrInvalidInput)
	}
	county.Path = strings.TrimSpace(county.Path)
	if !pathPattern.MatchString(county.Path) {
		return fmt.Errorf("invalid county path %q: %w", county.Path, models.ErrInvalidInput)
	}
	return nil
}

func (s *churchServiceImpl) validateAffiliation(affiliation *models.Affiliation) error {
	affiliation.Name = strings.TrimSpace(affiliation.Name)
	if affiliation.Name == "" {
		return fmt.Errorf("affiliation name is required: %w", models.ErrInvalidInput)
	}
	if affiliation.Path != nil {
		trimmed := strings.TrimSpace(*affiliation.Path)
		if trimmed == "" {
			affiliation.Path = nil
		} else if !pathPattern.MatchString(trimmed) {
			return fmt.Errorf("invalid affiliation path %q: %w", trimmed, models.ErrInvalidInput)
		} else {
			affiliation.Path = &trimmed
		}
	}
	return nil
}

func (s *churchServiceImpl) saveChildren(ctx context.Context, church *models.Church) error {
	if err := s.churchRepo.ReplaceGatherings(ctx, church.ID, church.Gatherings); err != nil {
		s.logger.Error("Failed to replace gatherings", zap.Int64("churchID", church.ID), zap.Error(err))
		return fmt.Errorf("failed to replace gatherings: %w", err)
	}
	affiliationIDs := make([]int64, 0, len(church.Affiliations))
	for _, a := range church.Affiliations {
		affiliationIDs = append(affiliationIDs, a.ID)
	}
	if err := s.churchRepo.ReplaceAffiliations(ctx, church.ID, affiliationIDs); err != nil {
		s.logger.Error("Failed to replace affiliations", zap.Int64("churchID", church.ID), zap.Error(err))
		return fmt.Errorf("failed to replace affiliations: %w", err)
	}
	return nil
}
