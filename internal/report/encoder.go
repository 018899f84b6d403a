package report

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/google/uuid"

	"github.com/ignatzorin/report-accident/internal/media"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// Имена полей multipart запроса.
const (
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldAccidentType = "accident_type"
	FieldImage        = "image"

	// ImageFileName фиксированное имя файла фото.
	ImageFileName = "accident.jpg"
)

// Encoded готовое тело запроса и его Content-Type.
type Encoded struct {
	Body        []byte
	ContentType string
	Boundary    string
}

// Encoder собирает multipart/form-data тело отчёта.
type Encoder struct {
	newBoundary func() string
}

// NewEncoder создаёт кодировщик со случайной границей на каждый запрос.
func NewEncoder() *Encoder {
	return &Encoder{
		newBoundary: func() string { return "Boundary-" + uuid.NewString() },
	}
}

// Encode кодирует форму. Скалярные поля идут в фиксированном порядке,
// фото добавляется последней частью, если оно есть.
func (e *Encoder) Encode(f Form) (*Encoded, error) {
	if !f.scalarsFilled() {
		return nil, apperror.ErrInputsIncomplete
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	boundary := e.newBoundary()
	if err := w.SetBoundary(boundary); err != nil {
		return nil, fmt.Errorf("report: некорректная граница multipart: %w", err)
	}

	fields := [][2]string{
		{FieldName, f.Name},
		{FieldPhone, f.Phone},
		{FieldAccidentType, string(f.AccidentType)},
	}
	for _, field := range fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("report: не удалось записать поле %s: %w", field[0], err)
		}
	}

	if f.Image != nil && len(f.Image.Data) > 0 {
		mime := f.Image.MIME
		if mime == "" {
			mime = media.DefaultMIME
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FieldImage, ImageFileName))
		header.Set("Content-Type", mime)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("report: не удалось создать часть с фото: %w", err)
		}
		if _, err := part.Write(f.Image.Data); err != nil {
			return nil, fmt.Errorf("report: не удалось записать фото: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("report: не удалось закрыть multipart: %w", err)
	}

	return &Encoded{
		Body:        buf.Bytes(),
		ContentType: w.FormDataContentType(),
		Boundary:    boundary,
	}, nil
}
