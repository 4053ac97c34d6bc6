package handler

import (
	"net/url"

	"github.com/gin-gonic/gin"
)

const flashCookieName = "flash"

// setFlash сохраняет одноразовое сообщение для следующей страницы.
func setFlash(c *gin.Context, message string) {
	c.SetCookie(flashCookieName, url.QueryEscape(message), 60, "/", "", false, true)
}

// takeFlash возвращает flash-сообщение и сразу стирает его.
func takeFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}
