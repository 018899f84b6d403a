// Package dispatch отделяет фоновые сетевые вызовы от потока, который
// меняет видимое состояние. Все изменения состояния для отображения
// проходят через Scheduler.
package dispatch

import (
	"context"
	"sync"
)

// Scheduler исполнитель с привязкой к UI потоку.
type Scheduler interface {
	Post(fn func())
}

// Immediate выполняет функции сразу в вызывающей горутине. Для тестов и CLI.
type Immediate struct{}

// Post выполняет fn синхронно.
func (Immediate) Post(fn func()) { fn() }

// Loop последовательный исполнитель: все функции выполняются по очереди
// в горутине, вызвавшей Run.
type Loop struct {
	queue chan func()
	once  sync.Once
	done  chan struct{}
}

// NewLoop создаёт цикл с буфером очереди size.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = 64
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post ставит fn в очередь. После остановки цикла вызовы игнорируются.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run обрабатывает очередь до отмены ctx.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.queue:
			fn()
		}
	}
}

// Done закрывается после остановки цикла.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Await выполняет fn на планировщике и ждёт завершения.
// Нельзя вызывать из функции, которая сама выполняется на том же Loop.
func Await(ctx context.Context, s Scheduler, fn func()) error {
	finished := make(chan struct{})
	s.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
