package mcptools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service"
	servicemocks "github.com/aaronshaf/churches-sub000/internal/service/mocks"
)

func callToolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestFormatChurch(t *testing.T) {
	county := "Salt Lake"
	website := "https://grace.example.com"
	notes := "nursery available"

	church := &models.Church{
		Name:       "Grace Church",
		CountyName: &county,
		Website:    &website,
		Language:   "English",
		Gatherings: []models.Gathering{
			{Time: "Sunday 10:30 AM", Notes: &notes},
		},
		Affiliations: []models.Affiliation{{Name: "Acts 29"}},
	}

	out := formatChurch(church)
	assert.Contains(t, out, "# Grace Church")
	assert.Contains(t, out, "County: Salt Lake")
	assert.Contains(t, out, "Website: https://grace.example.com")
	assert.Contains(t, out, "- Sunday 10:30 AM (nursery available)")
	assert.Contains(t, out, "- Acts 29")
}

func TestFormatChurch_SkipsEmptyFields(t *testing.T) {
	out := formatChurch(&models.Church{Name: "Bare Church"})
	assert.Contains(t, out, "# Bare Church")
	assert.NotContains(t, out, "Website:")
	assert.NotContains(t, out, "## Gatherings")
}

func TestListChurches_StatusFilter(t *testing.T) {
	churchRepo := new(servicemocks.ChurchRepository)
	countyRepo := new(servicemocks.CountyRepository)
	svc := service.NewChurchService(churchRepo, countyRepo, new(servicemocks.AffiliationRepository), zap.NewNop())

	countyRepo.On("GetByPath", mock.Anything, "salt-lake").
		Return(&models.County{ID: 7, Name: "Salt Lake", Path: "salt-lake"}, nil)

	churches := []*models.Church{{ID: 1, Name: "Quiet Chapel", Status: models.StatusUnlisted}}
	churchRepo.On("List", mock.Anything, mock.MatchedBy(func(f models.ChurchFilter) bool {
		return f.PublicOnly &&
			len(f.Statuses) == 1 && f.Statuses[0] == models.StatusUnlisted &&
			f.CountyID != nil && *f.CountyID == 7
	})).Return(churches, nil)
	churchRepo.On("AttachChildren", mock.Anything, churches).Return(nil)

	res, err := ListChurchesHandler(svc)(context.Background(), callToolRequest(map[string]any{
		"county": "salt-lake",
		"status": "unlisted",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Quiet Chapel")
	churchRepo.AssertExpectations(t)
}

func TestListChurches_RejectsUnknownStatus(t *testing.T) {
	churchRepo := new(servicemocks.ChurchRepository)
	svc := service.NewChurchService(churchRepo, new(servicemocks.CountyRepository), new(servicemocks.AffiliationRepository), zap.NewNop())

	res, err := ListChurchesHandler(svc)(context.Background(), callToolRequest(map[string]any{
		"status": "glorious",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	churchRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListChurches_RejectsHiddenStatus(t *testing.T) {
	churchRepo := new(servicemocks.ChurchRepository)
	svc := service.NewChurchService(churchRepo, new(servicemocks.CountyRepository), new(servicemocks.AffiliationRepository), zap.NewNop())

	res, err := ListChurchesHandler(svc)(context.Background(), callToolRequest(map[string]any{
		"status": string(models.StatusHeretical),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not publicly visible")
	churchRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
