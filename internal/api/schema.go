package api

import (
	"github.com/ignatzorin/report-accident/internal/models"
)

// reportWire схема отчёта на проводе (snake_case). Теги json и есть
// таблица соответствия полей; toModel только переносит значения.
type reportWire struct {
	UUID         string  `json:"uuid"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Status       string  `json:"status"`
	AccidentType string  `json:"accident_type"`
	Location     *string `json:"location"`
	Counts       any     `json:"counts"`
	CreatedAt    *string `json:"created_at"`
	Image        string  `json:"image"`
}

// messageWire ответ с полем message.
type messageWire struct {
	Message *string `json:"message"`
}

// errorWire ответ об ошибке: Laravel отдаёт message, sandbox отдаёт error.
type errorWire struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e errorWire) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (w reportWire) toModel(resolve func(string) string) models.Report {
	accidentType, _ := models.ParseAccidentType(w.AccidentType)
	return models.Report{
		ID:            w.UUID,
		ReporterName:  w.Name,
		ReporterPhone: w.Phone,
		AccidentType:  accidentType,
		Status:        models.ParseStatus(w.Status),
		Location:      w.Location,
		Counts:        countsString(w.Counts),
		CreatedAt:     w.CreatedAt,
		ImageURL:      resolve(w.Image),
	}
}

// countsString приводит counts к строке: поле приходит и числом, и строкой.
func countsString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return formatNumber(c)
	default:
		return ""
	}
}
