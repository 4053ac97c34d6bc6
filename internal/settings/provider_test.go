package settings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/settings"
	"github.com/aaronshaf/churches-sub000/internal/settings/mocks"
)

func newProviderWithRows(rows []*models.Setting) *settings.Provider {
	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", mock.Anything).Return(rows, nil)
	cache := settings.NewCache(newFakeKV(), repo, zap.NewNop())
	return settings.NewProvider(cache, zap.NewNop())
}

func TestProvider_Defaults(t *testing.T) {
	ctx := context.Background()
	p := newProviderWithRows(nil)

	assert.Equal(t, "Church Directory", p.SiteTitle(ctx))
	assert.Equal(t, "the region", p.SiteRegion(ctx))
	assert.Equal(t, "A directory of evangelical churches", p.Tagline(ctx))
	assert.Empty(t, p.LogoURL(ctx))
	assert.Empty(t, p.MapsAPIKey(ctx))
	assert.True(t, p.CommentsEnabled(ctx))
}

func TestProvider_StoredValuesOverrideDefaults(t *testing.T) {
	ctx := context.Background()
	p := newProviderWithRows([]*models.Setting{
		{Key: settings.KeySiteTitle, Value: strPtr("Utah Churches")},
		{Key: settings.KeyLogoURL, Value: strPtr("https://x/logo.png")},
		{Key: settings.KeyCommentsEnabled, Value: strPtr("false")},
	})

	assert.Equal(t, "Utah Churches", p.SiteTitle(ctx))
	assert.Equal(t, "https://x/logo.png", p.LogoURL(ctx))
	assert.False(t, p.CommentsEnabled(ctx))
}

func TestProvider_NullValueFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	// NULL в базе равнозначен отсутствию значения
	p := newProviderWithRows([]*models.Setting{
		{Key: settings.KeySiteTitle, Value: nil},
	})
	assert.Equal(t, "Church Directory", p.SiteTitle(ctx))
}

func TestProvider_FrontPageTitleFallsBackToSiteTitle(t *testing.T) {
	ctx := context.Background()

	p := newProviderWithRows([]*models.Setting{
		{Key: settings.KeySiteTitle, Value: strPtr("Utah Churches")},
	})
	assert.Equal(t, "Utah Churches", p.FrontPageTitle(ctx))

	p = newProviderWithRows([]*models.Setting{
		{Key: settings.KeySiteTitle, Value: strPtr("Utah Churches")},
		{Key: settings.KeyFrontPageTitle, Value: strPtr("Welcome")},
	})
	assert.Equal(t, "Welcome", p.FrontPageTitle(ctx))
}

func TestProvider_DatabaseErrorDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.SettingsRepository)
	repo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))
	kv := new(mocks.KVStore)
	kv.On("Get", mock.Anything, mock.Anything).Return(nil, false, nil)

	cache := settings.NewCache(kv, repo, zap.NewNop())
	p := settings.NewProvider(cache, zap.NewNop())

	assert.Equal(t, "Church Directory", p.SiteTitle(ctx))
	assert.True(t, p.CommentsEnabled(ctx))
}

func TestProvider_InvalidBoolDefaultsToEnabled(t *testing.T) {
	ctx := context.Background()
	p := newProviderWithRows([]*models.Setting{
		{Key: settings.KeyCommentsEnabled, Value: strPtr("whenever")},
	})
	assert.True(t, p.CommentsEnabled(ctx))
}
