package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/report-accident/internal/dto"
	"github.com/ignatzorin/report-accident/internal/http/middleware"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/service"
)

// multipartOverhead запас на текстовые поля и границы multipart сверх лимита фото.
const multipartOverhead = 1 << 20

// ReportHandler HTTP слой отчётов о происшествиях.
type ReportHandler struct {
	reports        *service.ReportService
	maxUploadBytes int64
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{reports: reports, maxUploadBytes: maxUploadBytes}
}

// Submit обрабатывает POST /api/reports/new (multipart/form-data).
func (h *ReportHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	file, err := c.FormFile(dto.FormFieldImage)
	if err != nil {
		abortWithError(c, apperror.New(apperror.ErrCodeValidation, "image is required"))
		return
	}
	if file.Size == 0 {
		abortWithError(c, apperror.New(apperror.ErrCodeValidation, "image is empty"))
		return
	}

	src, err := file.Open()
	if err != nil {
		abortWithError(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "image could not be read"))
		return
	}
	defer src.Close()

	in := service.CreateReportInput{
		Name:         c.PostForm(dto.FormFieldName),
		Phone:        c.PostForm(dto.FormFieldPhone),
		AccidentType: c.PostForm(dto.FormFieldAccidentType),
		ImageName:    file.Filename,
		Image:        src,
	}
	if loc := strings.TrimSpace(c.PostForm(dto.FormFieldLocation)); loc != "" {
		in.Location = &loc
	}
	if userID, ok := middleware.UserID(c); ok {
		in.UserID = &userID
	}

	if _, err := h.reports.Create(c.Request.Context(), in); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "Report submitted successfully"})
}

// ListForUser обрабатывает GET /api/reports/:userID.
func (h *ReportHandler) ListForUser(c *gin.Context) {
	requesterID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil || userID <= 0 {
		abortWithError(c, apperror.New(apperror.ErrCodeBadRequest, "invalid user id"))
		return
	}

	reports, err := h.reports.ListForUser(c.Request.Context(), requesterID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponses(reports))
}

// ListAll обрабатывает GET /api/reports/all.
func (h *ReportHandler) ListAll(c *gin.Context) {
	reports, err := h.reports.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponses(reports))
}

// MarkSolved обрабатывает PUT /api/reports/solved/:uuid.
func (h *ReportHandler) MarkSolved(c *gin.Context) {
	if _, err := h.reports.MarkSolved(c.Request.Context(), c.Param("uuid")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Report marked as solved"})
}

// Delete обрабатывает DELETE /api/reports/delete/:uuid.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reports.Delete(c.Request.Context(), c.Param("uuid")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Report deleted"})
}
