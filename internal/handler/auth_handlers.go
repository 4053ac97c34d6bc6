package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

// oauthStateCookie хранит CSRF-состояние OAuth между редиректом и колбэком.
const oauthStateCookie = "oauth_state"

func (h *Handler) loginPage(c *gin.Context) {
	ctx := c.Request.Context()
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Title":         "Sign in — " + h.provider.SiteTitle(ctx),
		"SiteTitle":     h.provider.SiteTitle(ctx),
		"GoogleEnabled": h.authService.GoogleAuthURL("probe") != "",
		"Flash":         takeFlash(c),
	})
}

// login обрабатывает вход по паролю. Токен сессии кладется в HttpOnly cookie.
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		handleServiceError(c, models.ErrInvalidCredentials)
		return
	}

	td, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, td)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  td.AccessToken,
		"refresh_token": td.RefreshToken,
	})
}

// logout завершает сессию и стирает cookie.
func (h *Handler) logout(c *gin.Context) {
	token := sessionToken(c)
	if token != "" {
		if user, err := h.authService.VerifyAccessToken(c.Request.Context(), token); err == nil {
			// Пустые UUID означают отзыв всех сессий пользователя
			_ = h.authService.Logout(c.Request.Context(), user.UserID, "", "")
		}
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// refresh выдает новую пару токенов.
func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleServiceError(c, models.ErrTokenMalformed)
		return
	}

	td, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, td)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  td.AccessToken,
		"refresh_token": td.RefreshToken,
	})
}

// googleRedirect отправляет пользователя на страницу согласия Google.
func (h *Handler) googleRedirect(c *gin.Context) {
	state := uuid.NewString()
	url := h.authService.GoogleAuthURL(state)
	if url == "" {
		h.notFound(c)
		return
	}
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// googleCallback завершает OAuth-вход.
func (h *Handler) googleCallback(c *gin.Context) {
	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		h.logger.Warn("Google OAuth callback with invalid state")
		handleServiceError(c, models.ErrInvalidCredentials)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		handleServiceError(c, models.ErrInvalidCredentials)
		return
	}

	td, err := h.authService.LoginWithGoogle(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("Google login failed", zap.Error(err))
		handleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, td)
	setFlash(c, "Signed in with Google")
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *Handler) setSessionCookie(c *gin.Context, td *models.TokenDetails) {
	maxAge := int(time.Until(time.Unix(td.AtExpires, 0)).Seconds())
	c.SetCookie(sessionCookieName, td.AccessToken, maxAge, "/", "", false, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}
