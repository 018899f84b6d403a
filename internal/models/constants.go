package models

import "strings"

// ReportStatus каноническая модель статуса отчёта на клиенте.
type ReportStatus int

const (
	StatusUnknown ReportStatus = iota
	StatusPending
	StatusResolved
	StatusCanceled
)

// Коды статусов на проводе.
const (
	StatusCodePending  = "0"
	StatusCodeResolved = "1"
	StatusCodeCanceled = "2"
)

// statusCodes таблица соответствия кода на проводе и канонического статуса.
var statusCodes = map[string]ReportStatus{
	StatusCodePending:  StatusPending,
	StatusCodeResolved: StatusResolved,
	StatusCodeCanceled: StatusCanceled,
}

// ParseStatus разбирает код статуса. Учитывается только первый токен:
// сервер может присылать "0 ⏱️" вместо "0".
func ParseStatus(raw string) ReportStatus {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return StatusUnknown
	}
	if st, ok := statusCodes[fields[0]]; ok {
		return st
	}
	return StatusUnknown
}

// Code возвращает код статуса для провода.
func (s ReportStatus) Code() string {
	for code, st := range statusCodes {
		if st == s {
			return code
		}
	}
	return ""
}

func (s ReportStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusResolved:
		return "Resolved"
	case StatusCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// AccidentType тип происшествия.
type AccidentType string

const (
	AccidentCar        AccidentType = "Car"
	AccidentPedestrian AccidentType = "Pedestrian"
	AccidentBike       AccidentType = "Bike"
)

// AccidentTypes перечисляет допустимые типы в порядке отображения.
var AccidentTypes = []AccidentType{AccidentCar, AccidentPedestrian, AccidentBike}

// ParseAccidentType разбирает тип без учёта регистра и хвостовых эмодзи ("Car 🚗").
func ParseAccidentType(raw string) (AccidentType, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", false
	}
	for _, t := range AccidentTypes {
		if strings.EqualFold(fields[0], string(t)) {
			return t, true
		}
	}
	return AccidentType(raw), false
}

// Виды справочников провайдеров.
const (
	ProviderKindCompany   = "company"
	ProviderKindBreakdown = "breakdown"
)
