// Package handler содержит HTTP-слой справочника: публичные страницы,
// прием отзывов, аутентификацию и админку.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/config"
	"github.com/aaronshaf/churches-sub000/internal/interfaces"
	"github.com/aaronshaf/churches-sub000/internal/service"
	"github.com/aaronshaf/churches-sub000/internal/settings"
)

// Handler обрабатывает HTTP-запросы справочника.
type Handler struct {
	churchService   service.ChurchService
	feedbackService service.FeedbackService
	settingsService service.SettingsService
	authService     service.AuthService
	sermonService   service.SermonService
	userRepo        interfaces.UserRepository
	provider        *settings.Provider
	cfg             *config.Config
	logger          *zap.Logger
}

// NewHandler создает HTTP-обработчик.
func NewHandler(
	churchService service.ChurchService,
	feedbackService service.FeedbackService,
	settingsService service.SettingsService,
	authService service.AuthService,
	sermonService service.SermonService,
	userRepo interfaces.UserRepository,
	provider *settings.Provider,
	cfg *config.Config,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		churchService:   churchService,
		feedbackService: feedbackService,
		settingsService: settingsService,
		authService:     authService,
		sermonService:   sermonService,
		userRepo:        userRepo,
		provider:        provider,
		cfg:             cfg,
		logger:          logger.Named("Handler"),
	}
}

// RegisterRoutes регистрирует все маршруты приложения.
// rateLimitMiddleware применяется к эндпоинтам, доступным анонимно
// для записи (отзывы, вход); nil отключает ограничение.
func (h *Handler) RegisterRoutes(router *gin.Engine, rateLimitMiddleware gin.HandlerFunc) {
	if rateLimitMiddleware == nil {
		rateLimitMiddleware = func(c *gin.Context) { c.Next() }
	}

	router.GET("/health", h.health)

	// Публичный каталог
	router.GET("/", h.homePage)
	router.GET("/counties/:path", h.countyPage)
	router.GET("/churches/:path", h.churchPage)
	router.GET("/map-data", h.mapData)

	// Выгрузки каталога
	router.GET("/churches.json", h.exportJSON)
	router.GET("/churches.yaml", h.exportYAML)
	router.GET("/churches.csv", h.exportCSV)
	router.GET("/churches.xlsx", h.exportXLSX)

	// Отзывы посетителей
	router.POST("/feedback", rateLimitMiddleware, h.submitFeedback)

	// Аутентификация
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", h.loginPage)
		authGroup.POST("/login", rateLimitMiddleware, h.login)
		authGroup.POST("/logout", h.logout)
		authGroup.POST("/refresh", h.refresh)
		authGroup.GET("/google", h.googleRedirect)
		authGroup.GET("/google/callback", h.googleCallback)
	}

	// Админка: маскируется под 404 для неаутентифицированных запросов
	admin := router.Group("/admin")
	admin.Use(h.AdminAuthMiddleware())
	{
		admin.GET("", h.adminDashboard)

		admin.GET("/churches", h.adminListChurches)
		admin.POST("/churches", h.adminCreateChurch)
		admin.GET("/churches/:id", h.adminGetChurch)
		admin.PUT("/churches/:id", h.adminUpdateChurch)
		admin.DELETE("/churches/:id", h.adminDeleteChurch)

		admin.GET("/counties", h.adminListCounties)
		admin.POST("/counties", h.adminCreateCounty)
		admin.GET("/counties/:id", h.adminGetCounty)
		admin.PUT("/counties/:id", h.adminUpdateCounty)
		admin.DELETE("/counties/:id", h.adminDeleteCounty)

		admin.GET("/affiliations", h.adminListAffiliations)
		admin.POST("/affiliations", h.adminCreateAffiliation)
		admin.GET("/affiliations/:id", h.adminGetAffiliation)
		admin.PUT("/affiliations/:id", h.adminUpdateAffiliation)
		admin.DELETE("/affiliations/:id", h.adminDeleteAffiliation)

		admin.GET("/comments", h.adminListPendingComments)
		admin.POST("/comments/:id/approve", h.adminApproveComment)
		admin.POST("/comments/:id/reject", h.adminRejectComment)
		admin.DELETE("/comments/:id", h.adminDeleteComment)

		admin.GET("/settings", h.adminListSettings)
		admin.PUT("/settings/:key", h.adminUpsertSetting)
		admin.DELETE("/settings/:key", h.adminDeleteSetting)

		admin.POST("/sermon/extract", h.adminExtractSermon)

		// Управление пользователями доступно только администраторам
		users := admin.Group("/users", h.RequireAdminRole())
		{
			users.GET("", h.adminListUsers)
			users.PUT("/:id/role", h.adminUpdateUserRole)
		}
	}
}
