package models

import (
	"time"
)

// Report отчёт о происшествии в том виде, в каком его видит клиент.
type Report struct {
	ID            string
	ReporterName  string
	ReporterPhone string
	AccidentType  AccidentType
	Status        ReportStatus
	Location      *string
	Counts        string
	CreatedAt     *string
	ImageURL      string
}

// IsResolved сообщает, закрыт ли отчёт.
func (r Report) IsResolved() bool {
	return r.Status == StatusResolved
}

// StoredReport запись отчёта на стороне sandbox сервера.
type StoredReport struct {
	ID           string    `db:"id" json:"uuid"`
	UserID       *int64    `db:"user_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	AccidentType string    `db:"accident_type" json:"accident_type"`
	Status       string    `db:"status" json:"status"`
	Location     *string   `db:"location" json:"location"`
	ImagePath    string    `db:"image_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}
