package dto

import (
	"time"

	"github.com/ignatzorin/report-accident/internal/models"
)

// StoragePrefix URL префикс, под которым раздаётся файловое хранилище.
const StoragePrefix = "storage/"

// MessageResponse ответ с текстом для пользователя.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReportResponse отчёт на проводе.
type ReportResponse struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Status       string  `json:"status"`
	AccidentType string  `json:"accident_type"`
	Location     *string `json:"location"`
	CreatedAt    string  `json:"created_at"`
	Image        string  `json:"image"`
}

// NewReportResponse переводит запись хранилища в формат провода.
func NewReportResponse(r models.StoredReport) ReportResponse {
	return ReportResponse{
		UUID:         r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Status:       r.Status,
		AccidentType: r.AccidentType,
		Location:     r.Location,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		Image:        StoragePrefix + r.ImagePath,
	}
}

// NewReportResponses переводит список; пустой список кодируется как [].
func NewReportResponses(reports []models.StoredReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, NewReportResponse(r))
	}
	return out
}
