package dispatch

import (
	"context"
	"fmt"

	"github.com/ignatzorin/report-accident/internal/goroutine"
)

// Dispatcher запускает работу в фоне и доставляет продолжения на UI планировщик.
type Dispatcher struct {
	ui       Scheduler
	recovery *goroutine.RecoveryHandler
}

// NewDispatcher создаёт диспетчер. nil ui означает Immediate.
func NewDispatcher(ui Scheduler) *Dispatcher {
	if ui == nil {
		ui = Immediate{}
	}
	return &Dispatcher{ui: ui, recovery: goroutine.DefaultRecoveryHandler}
}

// UI возвращает планировщик UI потока.
func (d *Dispatcher) UI() Scheduler {
	return d.ui
}

// Task результат фоновой операции.
type Task[T any] struct {
	ui    Scheduler
	done  chan struct{}
	value T
	err   error
}

// Async запускает work в отдельной горутине с восстановлением после panic.
func Async[T any](d *Dispatcher, ctx context.Context, work func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{ui: d.ui, done: make(chan struct{})}
	d.recovery.SafeGoWithContext(ctx, func(ctx context.Context) {
		completed := false
		defer func() {
			if !completed {
				t.err = fmt.Errorf("dispatch: фоновая задача завершилась паникой")
			}
			close(t.done)
		}()
		t.value, t.err = work(ctx)
		completed = true
	})
	return t
}

// Then планирует fn на UI планировщике после завершения задачи.
func (t *Task[T]) Then(fn func(T, error)) {
	go func() {
		<-t.done
		t.ui.Post(func() { fn(t.value, t.err) })
	}()
}

// Wait блокирует до завершения задачи или отмены ctx.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done закрывается по завершении задачи.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}
