package report

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/dispatch"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

// MutationAPI транспорт изменяющих запросов.
type MutationAPI interface {
	MarkSolved(ctx context.Context, reportID string) error
	DeleteReport(ctx context.Context, reportID string) error
}

// Mutator меняет статус отдельных отчётов и затем сверяет список с сервером.
// Для каждого id одновременно идёт не больше одной мутации.
type Mutator struct {
	api        MutationAPI
	sync       *Synchronizer
	pending    *PendingSet
	dispatcher *dispatch.Dispatcher
}

// NewMutator создаёт клиент мутаций. sync может быть nil: тогда локальной
// проверки статуса и сверки списка после мутации нет.
func NewMutator(api MutationAPI, sync *Synchronizer, pending *PendingSet, dispatcher *dispatch.Dispatcher) *Mutator {
	if pending == nil {
		pending = NewPendingSet()
	}
	if dispatcher == nil {
		dispatcher = dispatch.NewDispatcher(nil)
	}
	return &Mutator{api: api, sync: sync, pending: pending, dispatcher: dispatcher}
}

// Pending возвращает множество незавершённых мутаций.
func (m *Mutator) Pending() *PendingSet {
	return m.pending
}

// MarkSolved отмечает отчёт решённым (PUT).
func (m *Mutator) MarkSolved(ctx context.Context, reportID string) error {
	return m.mutate(ctx, reportID, "mark_solved", m.api.MarkSolved)
}

// Delete удаляет отчёт (DELETE). Решённые отчёты не удаляются.
func (m *Mutator) Delete(ctx context.Context, reportID string) error {
	if m.sync == nil {
		return m.mutate(ctx, reportID, "delete", m.api.DeleteReport)
	}
	if r, ok := m.sync.Find(reportID); ok && r.IsResolved() {
		return apperror.ErrDeleteResolved
	}
	return m.mutate(ctx, reportID, "delete", m.api.DeleteReport)
}

// MarkSolvedAsync фоновый вариант MarkSolved.
func (m *Mutator) MarkSolvedAsync(ctx context.Context, reportID string) *dispatch.Task[struct{}] {
	return dispatch.Async(m.dispatcher, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.MarkSolved(ctx, reportID)
	})
}

// DeleteAsync фоновый вариант Delete.
func (m *Mutator) DeleteAsync(ctx context.Context, reportID string) *dispatch.Task[struct{}] {
	return dispatch.Async(m.dispatcher, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.Delete(ctx, reportID)
	})
}

// mutate: Idle -> Pending -> Idle. При успехе id снимается только после
// сверки списка, чтобы не показывать устаревший статус.
func (m *Mutator) mutate(ctx context.Context, reportID, op string, call func(context.Context, string) error) error {
	if !m.pending.Begin(reportID) {
		return apperror.ErrMutationPending
	}
	defer m.pending.End(reportID)

	fields := logrus.Fields{"report_id": reportID, "op": op}

	if err := call(ctx, reportID); err != nil {
		fields["error"] = err.Error()
		logger.Log.WithFields(fields).Error("report: мутация не выполнена")
		return err
	}

	if m.sync != nil {
		if err := m.sync.Reconcile(ctx); err != nil {
			fields["error"] = err.Error()
			logger.Log.WithFields(fields).Warn("report: мутация выполнена, но список не обновлён")
			return err
		}
	}

	logger.Log.WithFields(fields).Info("report: мутация выполнена")
	return nil
}
