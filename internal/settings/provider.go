package settings

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// Известные ключи настроек. Обращение к конфигурации идет только через
// типизированные геттеры Provider, чтобы опечатка в ключе была ошибкой
// компиляции, а не молчаливым nil.
const (
	KeySiteTitle       = "site_title"
	KeySiteDomain      = "site_domain"
	KeySiteRegion      = "site_region"
	KeyTagline         = "tagline"
	KeyFrontPageTitle  = "front_page_title"
	KeyLogoURL         = "logo_url"
	KeyFaviconURL      = "favicon_url"
	KeyImagePrefix     = "image_prefix"
	KeyMapsApiKey      = "google_maps_api_key"
	KeyCommentsEnabled = "comments_enabled"
)

// Централизованные значения по умолчанию для отсутствующих ключей.
var defaults = map[string]string{
	KeySiteTitle:       "Church Directory",
	KeySiteRegion:      "the region",
	KeyTagline:         "A directory of evangelical churches",
	KeyCommentsEnabled: "true",
}

// Provider — типизированный доступ к настройкам поверх Cache.
// Внедряется зависимостью во все компоненты, которым нужна конфигурация;
// никто не читает настройки из глобального состояния напрямую.
type Provider struct {
	cache  *Cache
	logger *zap.Logger
}

// NewProvider создает провайдер настроек.
func NewProvider(cache *Cache, logger *zap.Logger) *Provider {
	return &Provider{
		cache:  cache,
		logger: logger.Named("SettingsProvider"),
	}
}

// get возвращает значение ключа или дефолт. Ошибка базы деградирует
// до дефолта: страница с дефолтным заголовком лучше, чем 500.
func (p *Provider) get(ctx context.Context, key string) string {
	value, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.Warn("Settings lookup failed, using default", zap.String("key", key), zap.Error(err))
		return defaults[key]
	}
	if value == nil || *value == "" {
		return defaults[key]
	}
	return *value
}

// SiteTitle возвращает название сайта.
func (p *Provider) SiteTitle(ctx context.Context) string { return p.get(ctx, KeySiteTitle) }

// SiteDomain возвращает домен сайта (может быть пустым).
func (p *Provider) SiteDomain(ctx context.Context) string { return p.get(ctx, KeySiteDomain) }

// SiteRegion возвращает название региона справочника.
func (p *Provider) SiteRegion(ctx context.Context) string { return p.get(ctx, KeySiteRegion) }

// Tagline возвращает подзаголовок сайта.
func (p *Provider) Tagline(ctx context.Context) string { return p.get(ctx, KeyTagline) }

// FrontPageTitle возвращает заголовок главной страницы,
// откатываясь на SiteTitle, если отдельный заголовок не задан.
func (p *Provider) FrontPageTitle(ctx context.Context) string {
	if v := p.get(ctx, KeyFrontPageTitle); v != "" {
		return v
	}
	return p.SiteTitle(ctx)
}

// LogoURL возвращает URL логотипа (может быть пустым).
func (p *Provider) LogoURL(ctx context.Context) string { return p.get(ctx, KeyLogoURL) }

// FaviconURL возвращает URL favicon (может быть пустым).
func (p *Provider) FaviconURL(ctx context.Context) string { return p.get(ctx, KeyFaviconURL) }

// ImagePrefix возвращает префикс URL картинок (может быть пустым).
func (p *Provider) ImagePrefix(ctx context.Context) string { return p.get(ctx, KeyImagePrefix) }

// MapsAPIKey возвращает ключ Google Maps (может быть пустым).
func (p *Provider) MapsAPIKey(ctx context.Context) string { return p.get(ctx, KeyMapsApiKey) }

// CommentsEnabled сообщает, принимаются ли отзывы посетителей.
func (p *Provider) CommentsEnabled(ctx context.Context) bool {
	v, err := strconv.ParseBool(p.get(ctx, KeyCommentsEnabled))
	if err != nil {
		return true
	}
	return v
}
