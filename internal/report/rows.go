package report

import (
	"github.com/ignatzorin/report-accident/internal/models"
)

// Row строка списка отчётов с доступными действиями.
type Row struct {
	Report        models.Report
	StatusLabel   string
	CanDelete     bool
	CanMarkSolved bool
}

// BuildRows вычисляет действия для каждой строки. Удаление скрыто у решённых
// отчётов и у отчётов с незавершённой мутацией.
func BuildRows(reports []models.Report, pending *PendingSet) []Row {
	rows := make([]Row, 0, len(reports))
	for _, r := range reports {
		busy := pending != nil && pending.Has(r.ID)
		rows = append(rows, Row{
			Report:        r,
			StatusLabel:   r.Status.String(),
			CanDelete:     !r.IsResolved() && !busy,
			CanMarkSolved: !busy,
		})
	}
	return rows
}
