package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/report-accident/internal/service"
)

// DirectoryHandler справочники страховых компаний и эвакуаторов.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler создаёт хэндлер.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Companies обрабатывает GET /api/companies/all.
func (h *DirectoryHandler) Companies(c *gin.Context) {
	companies, err := h.directory.Companies(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

// Breakdowns обрабатывает GET /api/breakdowns/all.
func (h *DirectoryHandler) Breakdowns(c *gin.Context) {
	breakdowns, err := h.directory.Breakdowns(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdowns)
}
