package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно. Ошибки apperror
// отдаются со своим статусом и сообщением, остальные маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		statusCode := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code != apperror.ErrCodeInternal && appErr.Code != apperror.ErrCodeDatabaseError {
			statusCode = appErr.HTTPStatus
			message = appErr.Message
		}

		fields := logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": statusCode,
		}
		if statusCode >= http.StatusInternalServerError {
			logger.Log.WithFields(fields).Error("http: ошибка обработки запроса")
		} else {
			logger.Log.WithFields(fields).Info("http: запрос отклонён")
		}

		c.JSON(statusCode, gin.H{"error": message})
	}
}
