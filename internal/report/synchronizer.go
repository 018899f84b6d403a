package report

import (
	"context"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/dispatch"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
)

// ListAPI транспорт списка отчётов пользователя.
type ListAPI interface {
	ListUserReports(ctx context.Context, userID int64, token string) ([]models.Report, error)
}

// Synchronizer держит локальную копию отчётов пользователя и заменяет её
// целиком после каждого успешного запроса. Замена выполняется на UI планировщике.
type Synchronizer struct {
	api      ListAPI
	sessions *session.Store
	ui       dispatch.Scheduler

	flight   sync.Mutex
	inflight chan struct{} // не nil, пока идёт обновление

	mu         sync.RWMutex
	reports    []models.Report
	generation int
	listeners  []func([]models.Report)
}

// NewSynchronizer создаёт синхронизатор. nil ui означает dispatch.Immediate.
func NewSynchronizer(api ListAPI, sessions *session.Store, ui dispatch.Scheduler) *Synchronizer {
	if ui == nil {
		ui = dispatch.Immediate{}
	}
	return &Synchronizer{api: api, sessions: sessions, ui: ui}
}

// Refresh загружает отчёты и заменяет список. Если обновление уже идёт,
// сразу возвращает ErrRefreshInProgress.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	done, ok := s.begin()
	if !ok {
		logger.Log.Debug("report: обновление уже выполняется, пропускаем")
		return apperror.ErrRefreshInProgress
	}
	defer s.finish(done)
	return s.fetchAndApply(ctx)
}

// Reconcile дожидается текущего обновления и выполняет собственное,
// чтобы результат гарантированно отражал уже завершённую мутацию.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	for {
		done, ok := s.begin()
		if ok {
			defer s.finish(done)
			return s.fetchAndApply(ctx)
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Reports возвращает копию текущего списка.
func (s *Synchronizer) Reports() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Find ищет отчёт по id в текущем списке.
func (s *Synchronizer) Find(id string) (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.ID == id {
			return r, true
		}
	}
	return models.Report{}, false
}

// Generation число применённых замен списка.
func (s *Synchronizer) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// OnChange регистрирует слушателя; он вызывается на UI планировщике после замены.
func (s *Synchronizer) OnChange(fn func([]models.Report)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refreshing сообщает, идёт ли обновление.
func (s *Synchronizer) Refreshing() bool {
	s.flight.Lock()
	defer s.flight.Unlock()
	return s.inflight != nil
}

func (s *Synchronizer) begin() (chan struct{}, bool) {
	s.flight.Lock()
	defer s.flight.Unlock()
	if s.inflight != nil {
		return s.inflight, false
	}
	s.inflight = make(chan struct{})
	return s.inflight, true
}

func (s *Synchronizer) finish(done chan struct{}) {
	s.flight.Lock()
	s.inflight = nil
	s.flight.Unlock()
	close(done)
}

func (s *Synchronizer) fetchAndApply(ctx context.Context) error {
	if s.sessions == nil {
		return apperror.ErrNotLoggedIn
	}
	sess, ok := s.sessions.Current()
	if !ok {
		logger.Log.Warn("report: нет токена или userID, обновление невозможно")
		return apperror.ErrNotLoggedIn
	}

	reports, err := s.api.ListUserReports(ctx, sess.UserID, sess.Token)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": sess.UserID,
			"error":   err.Error(),
		}).Warn("report: не удалось получить отчёты")
		return err
	}

	return dispatch.Await(ctx, s.ui, func() { s.apply(reports) })
}

// apply заменяет список целиком. Выполняется только на UI планировщике.
func (s *Synchronizer) apply(reports []models.Report) {
	s.mu.Lock()
	s.reports = reports
	s.generation++
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	logger.Log.WithField("count", len(reports)).Debug("report: список отчётов обновлён")

	for _, fn := range listeners {
		snapshot := make([]models.Report, len(reports))
		copy(snapshot, reports)
		fn(snapshot)
	}
}
