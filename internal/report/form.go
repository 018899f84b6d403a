package report

import (
	"strings"

	"github.com/ignatzorin/report-accident/internal/media"
	"github.com/ignatzorin/report-accident/internal/models"
)

// Form поля формы до отправки. Живёт только до показа результата.
type Form struct {
	Name         string
	Phone        string
	AccidentType models.AccidentType
	Image        *media.Image
}

// InputsFilled проверяет, можно ли включить отправку: имя, телефон,
// допустимый тип происшествия и фото заданы.
func (f Form) InputsFilled() bool {
	return f.scalarsFilled() && f.Image != nil && len(f.Image.Data) > 0
}

func (f Form) scalarsFilled() bool {
	_, ok := models.ParseAccidentType(string(f.AccidentType))
	return ok && strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Phone) != ""
}
