// Package watch подписка на websocket ленту изменений отчётов.
package watch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/report-accident/internal/goroutine"
	"github.com/ignatzorin/report-accident/internal/logger"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
	"github.com/ignatzorin/report-accident/internal/session"
)

// Refresher сверяет список отчётов с сервером. Reconcile дожидается
// текущего обновления и выполняет своё.
type Refresher interface {
	Reconcile(ctx context.Context) error
}

// URLBuilder строит адрес ленты для токена.
type URLBuilder interface {
	WebSocketURL(token string) string
}

// Watcher на события reports.changed сверяет список. События, пришедшие во
// время сверки, объединяются: после текущей выполняется ещё одна.
type Watcher struct {
	urls      URLBuilder
	sessions  *session.Store
	refresher Refresher
	dialer    *websocket.Dialer
	onEvent   func(models.ReportChange)

	mu      sync.Mutex
	running bool
	dirty   bool
}

// NewWatcher создаёт подписчика.
func NewWatcher(urls URLBuilder, sessions *session.Store, refresher Refresher) *Watcher {
	return &Watcher{
		urls:      urls,
		sessions:  sessions,
		refresher: refresher,
		dialer:    websocket.DefaultDialer,
	}
}

// OnEvent задаёт обработчик, вызываемый для каждого события до обновления.
func (w *Watcher) OnEvent(fn func(models.ReportChange)) {
	w.onEvent = fn
}

// Run держит соединение до закрытия сокета сервером или отмены ctx.
// Переподключения нет.
func (w *Watcher) Run(ctx context.Context) error {
	token := w.sessions.Token()
	if token == "" {
		return apperror.ErrNotLoggedIn
	}

	conn, _, err := w.dialer.DialContext(ctx, w.urls.WebSocketURL(token), nil)
	if err != nil {
		logger.Log.WithField("error", err.Error()).Warn("watch: не удалось подключиться к ленте")
		return apperror.NetworkFailure(err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	goroutine.SafeGo(func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	})

	logger.Log.Info("watch: подписка на ленту изменений")

	for {
		var event models.Event[json.RawMessage]
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				logger.Log.WithField("error", err.Error()).Warn("watch: некорректное сообщение пропущено")
				continue
			}
			return apperror.NetworkFailure(err)
		}
		if event.Type != models.EventReportsChanged {
			continue
		}
		w.handle(ctx, event.Data)
	}
}

func (w *Watcher) handle(ctx context.Context, raw json.RawMessage) {
	var change models.ReportChange
	_ = json.Unmarshal(raw, &change)

	logger.Log.WithFields(logrus.Fields{
		"report_id": change.ReportID,
		"action":    change.Action,
	}).Debug("watch: получено событие")

	if w.onEvent != nil {
		w.onEvent(change)
	}

	w.schedule(ctx)
}

// schedule запускает цикл сверки или помечает, что нужна ещё одна.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	goroutine.SafeGo(func() {
		for {
			if err := w.refresher.Reconcile(ctx); err != nil && ctx.Err() == nil {
				logger.Log.WithField("error", err.Error()).Warn("watch: обновление списка не выполнено")
			}

			w.mu.Lock()
			if !w.dirty || ctx.Err() != nil {
				w.running, w.dirty = false, false
				w.mu.Unlock()
				return
			}
			w.dirty = false
			w.mu.Unlock()
		}
	})
}
