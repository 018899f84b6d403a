package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/report-accident/internal/http/middleware"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (int64, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, apperror.ErrUnauthorized
	}
	return userID, nil
}

// abortWithError передаёт ошибку в ErrorHandler.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
