package models

// EventReportsChanged событие ленты изменений: список отчётов пользователя изменился.
const EventReportsChanged = "reports.changed"

// Действия над отчётом в событии reports.changed.
const (
	ReportActionCreated  = "created"
	ReportActionSolved   = "solved"
	ReportActionDeleted  = "deleted"
	ReportActionCanceled = "canceled"
)

// Event сообщение websocket: type имя события, data полезная нагрузка.
type Event[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// ReportChange полезная нагрузка reports.changed.
type ReportChange struct {
	ReportID string `json:"report_id"`
	Action   string `json:"action"`
}
