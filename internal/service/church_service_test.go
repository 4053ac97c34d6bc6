package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service/mocks"
)

func newChurchServiceForTest(churchRepo *mocks.ChurchRepository, countyRepo *mocks.CountyRepository) ChurchService {
	return NewChurchService(churchRepo, countyRepo, new(mocks.AffiliationRepository), zap.NewNop())
}

func TestListPublic_FiltersByCounty(t *testing.T) {
	ctx := context.Background()
	churchRepo := new(mocks.ChurchRepository)
	countyRepo := new(mocks.CountyRepository)

	county := &models.County{ID: 7, Name: "Salt Lake", Path: "salt-lake"}
	countyRepo.On("GetByPath", ctx, "salt-lake").Return(county, nil)

	churchRepo.On("List", ctx, mock.MatchedBy(func(f models.ChurchFilter) bool {
		return f.PublicOnly && f.CountyID != nil && *f.CountyID == county.ID
	})).Return([]*models.Church{{ID: 1, Name: "Grace Church"}}, nil)
	churchRepo.On("AttachChildren", ctx, mock.Anything).Return(nil)

	svc := newChurchServiceForTest(churchRepo, countyRepo)
	churches, err := svc.ListPublic(ctx, "salt-lake")
	require.NoError(t, err)
	require.Len(t, churches, 1)
	churchRepo.AssertExpectations(t)
}

func TestListPublic_UnknownCounty(t *testing.T) {
	ctx := context.Background()
	countyRepo := new(mocks.CountyRepository)
	countyRepo.On("GetByPath", ctx, "nowhere").Return(nil, models.ErrCountyNotFound)

	svc := newChurchServiceForTest(new(mocks.ChurchRepository), countyRepo)
	_, err := svc.ListPublic(ctx, "nowhere")
	assert.ErrorIs(t, err, models.ErrCountyNotFound)
}

func TestCreateChurch_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newChurchServiceForTest(new(mocks.ChurchRepository), new(mocks.CountyRepository))

	// Пустое имя
	err := svc.Create(ctx, &models.Church{Name: "  ", Status: models.StatusListed})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Недопустимый URL-путь
	badPath := "Not A Slug!"
	err = svc.Create(ctx, &models.Church{Name: "Grace", Path: &badPath, Status: models.StatusListed})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Неизвестный статус
	err = svc.Create(ctx, &models.Church{Name: "Grace", Status: "Bogus"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateChurch_SavesChildren(t *testing.T) {
	ctx := context.Background()
	churchRepo := new(mocks.ChurchRepository)

	church := &models.Church{
		ID:     5,
		Name:   "Grace Church",
		Status: models.StatusListed,
		Gatherings: []models.Gathering{
			{Time: "Sunday 10:30 AM"},
		},
		Affiliations: []models.Affiliation{{ID: 3}},
	}

	churchRepo.On("Update", ctx, church).Return(nil)
	churchRepo.On("ReplaceGatherings", ctx, int64(5), church.Gatherings).Return(nil)
	churchRepo.On("ReplaceAffiliations", ctx, int64(5), []int64{3}).Return(nil)

	svc := newChurchServiceForTest(churchRepo, new(mocks.CountyRepository))
	require.NoError(t, svc.Update(ctx, church))
	churchRepo.AssertExpectations(t)
}

func TestChurchStatusVisibility(t *testing.T) {
	assert.True(t, models.StatusListed.PubliclyVisible())
	assert.True(t, models.StatusUnlisted.PubliclyVisible())
	assert.False(t, models.StatusHeretical.PubliclyVisible())
	assert.False(t, models.StatusClosed.PubliclyVisible())
	assert.False(t, models.StatusAssess.PubliclyVisible())
}

func TestCreateCounty_Validation(t *testing.T) {
	ctx := context.Background()
	countyRepo := new(mocks.CountyRepository)
	svc := newChurchServiceForTest(new(mocks.ChurchRepository), countyRepo)

	// Пустое имя
	err := svc.CreateCounty(ctx, &models.County{Name: " ", Path: "utah"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// Недопустимый URL-путь
	err = svc.CreateCounty(ctx, &models.County{Name: "Utah", Path: "Not A Slug!"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	countyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateCounty_TrimsAndSaves(t *testing.T) {
	ctx := context.Background()
	countyRepo := new(mocks.CountyRepository)
	countyRepo.On("Create", ctx, mock.MatchedBy(func(c *models.County) bool {
		return c.Name == "Utah" && c.Path == "utah"
	})).Return(nil)

	svc := newChurchServiceForTest(new(mocks.ChurchRepository), countyRepo)
	require.NoError(t, svc.CreateCounty(ctx, &models.County{Name: "  Utah  ", Path: " utah "}))
	countyRepo.AssertExpectations(t)
}

func TestUpdateCounty_NotFound(t *testing.T) {
	ctx := context.Background()
	countyRepo := new(mocks.CountyRepository)
	countyRepo.On("Update", ctx, mock.Anything).Return(models.ErrCountyNotFound)

	svc := newChurchServiceForTest(new(mocks.ChurchRepository), countyRepo)
	err := svc.UpdateCounty(ctx, &models.County{ID: 99, Name: "Ghost", Path: "ghost"})
	assert.ErrorIs(t, err, models.ErrCountyNotFound)
}

func TestDeleteCounty_Delegates(t *testing.T) {
	ctx := context.Background()
	countyRepo := new(mocks.CountyRepository)
	countyRepo.On("Delete", ctx, int64(7)).Return(nil)

	svc := newChurchServiceForTest(new(mocks.ChurchRepository), countyRepo)
	require.NoError(t, svc.DeleteCounty(ctx, 7))
	countyRepo.AssertExpectations(t)
}

func TestCreateAffiliation_Validation(t *testing.T) {
	ctx := context.Background()
	affiliationRepo := new(mocks.AffiliationRepository)
	svc := NewChurchService(new(mocks.ChurchRepository), new(mocks.CountyRepository), affiliationRepo, zap.NewNop())

	err := svc.CreateAffiliation(ctx, &models.Affiliation{Name: "  "})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	badPath := "Bad Path"
	err = svc.CreateAffiliation(ctx, &models.Affiliation{Name: "SBC", Path: &badPath})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	affiliationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateAffiliation_NormalizesEmptyPath(t *testing.T) {
	ctx := context.Background()
	affiliationRepo := new(mocks.AffiliationRepository)
	affiliationRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Affiliation) bool {
		return a.Name == "Southern Baptist Convention" && a.Path == nil
	})).Return(nil)

	svc := NewChurchService(new(mocks.ChurchRepository), new(mocks.CountyRepository), affiliationRepo, zap.NewNop())
	emptyPath := "  "
	affiliation := &models.Affiliation{Name: "Southern Baptist Convention", Path: &emptyPath}
	require.NoError(t, svc.CreateAffiliation(ctx, affiliation))
	affiliationRepo.AssertExpectations(t)
}

func TestUpdateAffiliation_Delegates(t *testing.T) {
	ctx := context.Background()
	affiliationRepo := new(mocks.AffiliationRepository)
	affiliationRepo.On("Update", ctx, mock.MatchedBy(func(a *models.Affiliation) bool {
		return a.ID == 3 && a.Name == "Acts 29"
	})).Return(nil)
	affiliationRepo.On("Delete", ctx, int64(3)).Return(nil)

	svc := NewChurchService(new(mocks.ChurchRepository), new(mocks.CountyRepository), affiliationRepo, zap.NewNop())
	require.NoError(t, svc.UpdateAffiliation(ctx, &models.Affiliation{ID: 3, Name: "Acts 29"}))
	require.NoError(t, svc.DeleteAffiliation(ctx, 3))
	affiliationRepo.AssertExpectations(t)
}
