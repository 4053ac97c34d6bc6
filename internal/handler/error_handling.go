package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aaronshaf/churches-sub000/internal/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid username or password"
	case errors.Is(err, models.ErrUserAlreadyExists):
		statusCode = http.StatusConflict
		message = "Username already exists"
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusConflict
		message = "Email already exists"
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenNotFound):
		statusCode = http.StatusUnauthorized
		message = "Token is invalid"
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Token has expired"
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "Forbidden"
	case errors.Is(err, models.ErrChurchNotFound),
		errors.Is(err, models.ErrCountyNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrCommentNotFound),
		errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Not found"
	case errors.Is(err, models.ErrAlreadyExists):
		statusCode = http.StatusConflict
		message = "Resource already exists"
	case errors.Is(err, models.ErrEmptyComment):
		statusCode = http.StatusBadRequest
		message = "Comment content is empty"
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}
