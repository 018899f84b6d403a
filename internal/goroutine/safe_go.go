package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/ignatzorin/report-accident/internal/logger"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	logger Logger
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(logger Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: logger}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recover("")
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover(" (with context)")
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover(suffix string) {
	if r := recover(); r != nil {
		rh.log().Errorf("Panic in goroutine%s: %v\nStack trace:\n%s", suffix, r, debug.Stack())
	}
}

func (rh *RecoveryHandler) log() Logger {
	if rh.logger != nil {
		return rh.logger
	}
	return logger.Log
}

// DefaultRecoveryHandler пишет в общий logrus логгер (берётся в момент паники,
// поэтому видит уровень и формат после logger.Init).
var DefaultRecoveryHandler = NewRecoveryHandler(nil)

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
