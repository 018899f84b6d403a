package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр пути является UUID.
// Использование: api.PUT("/reports/solved/:uuid", UUIDValidator("uuid"), handler.MarkSolved)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			_ = c.Error(apperror.New(apperror.ErrCodeBadRequest, paramName+" must be a valid UUID"))
			c.Abort()
			return
		}
		c.Next()
	}
}
