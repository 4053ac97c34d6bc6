package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

const sessionCookieName = "session_token"

// sessionToken извлекает токен сессии из cookie или заголовка Authorization.
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// AdminAuthMiddleware проверяет токен сессии. Неаутентифицированные
// запросы получают 404, чтобы не раскрывать существование админки.
func (h *Handler) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			adminAuthFailuresTotal.Inc()
			h.notFound(c)
			return
		}

		user, err := h.authService.VerifyAccessToken(c.Request.Context(), token)
		if err != nil {
			h.logger.Debug("Admin session verification failed", zap.Error(err))
			adminAuthFailuresTotal.Inc()
			h.notFound(c)
			return
		}

		c.Set(string(models.UserContextKey), user)
		c.Next()
	}
}

// RequireAdminRole пропускает только пользователей с ролью admin.
// Выполняется после AdminAuthMiddleware.
func (h *Handler) RequireAdminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			adminAuthFailuresTotal.Inc()
			h.notFound(c)
			return
		}
		c.Next()
	}
}

// currentUser возвращает пользователя текущей сессии или nil.
func currentUser(c *gin.Context) *models.SessionUser {
	value, ok := c.Get(string(models.UserContextKey))
	if !ok {
		return nil
	}
	user, _ := value.(*models.SessionUser)
	return user
}

// notFound отвечает страницей 404 и прерывает обработку.
func (h *Handler) notFound(c *gin.Context) {
	c.Abort()
	if strings.HasPrefix(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
		return
	}
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"Title": "Page not found",
	})
}
