package report

import (
	"bytes"
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/dispatch"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
)

// SubmitAPI транспорт отправки отчёта.
type SubmitAPI interface {
	SubmitReport(ctx context.Context, contentType string, body io.Reader, token string) (string, error)
}

// Submitter отправляет отчёты. Повторная отправка не блокируется:
// форма выключает кнопку только по незаполненным полям.
type Submitter struct {
	api        SubmitAPI
	encoder    *Encoder
	sessions   *session.Store
	dispatcher *dispatch.Dispatcher
}

// NewSubmitter создаёт клиент отправки. sessions может быть nil.
func NewSubmitter(api SubmitAPI, encoder *Encoder, sessions *session.Store, dispatcher *dispatch.Dispatcher) *Submitter {
	if encoder == nil {
		encoder = NewEncoder()
	}
	if dispatcher == nil {
		dispatcher = dispatch.NewDispatcher(nil)
	}
	return &Submitter{
		api:        api,
		encoder:    encoder,
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

// Submit отправляет форму и возвращает сообщение сервера.
func (s *Submitter) Submit(ctx context.Context, f Form) (string, error) {
	if !f.InputsFilled() {
		return "", apperror.ErrInputsIncomplete
	}

	encoded, err := s.encoder.Encode(f)
	if err != nil {
		return "", err
	}

	token := ""
	if s.sessions != nil {
		token = s.sessions.Token()
	}

	message, err := s.api.SubmitReport(ctx, encoded.ContentType, bytes.NewReader(encoded.Body), token)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"accident_type": f.AccidentType,
			"error":         err.Error(),
		}).Warn("report: отправка не удалась")
		return "", err
	}

	logger.Log.WithField("accident_type", f.AccidentType).Info("report: отчёт отправлен")
	return message, nil
}

// SubmitAsync отправляет форму в фоне. Продолжение через Task.Then
// выполняется на UI планировщике.
func (s *Submitter) SubmitAsync(ctx context.Context, f Form) *dispatch.Task[string] {
	return dispatch.Async(s.dispatcher, ctx, func(ctx context.Context) (string, error) {
		return s.Submit(ctx, f)
	})
}

// Alert текст уведомления для результата отправки.
func Alert(message string, err error) string {
	if err != nil {
		return apperror.UserMessage(err)
	}
	return message
}
