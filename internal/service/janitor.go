package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/ignatzorin/report-accident/internal/logger"
)

// Janitor по расписанию отменяет зависшие отчёты.
type Janitor struct {
	cron    *cron.Cron
	reports *ReportService
	cache   *CacheService
}

// NewJanitor регистрирует задачу по cron-расписанию (например "@hourly").
// cache может быть nil.
func NewJanitor(reports *ReportService, cache *CacheService, schedule string) (*Janitor, error) {
	j := &Janitor{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		reports: reports,
		cache:   cache,
	}
	if _, err := j.cron.AddFunc(schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("janitor: некорректное расписание %q: %w", schedule, err)
	}
	return j, nil
}

// Start запускает планировщик.
func (j *Janitor) Start() {
	j.cron.Start()
	logger.Log.Info("janitor: планировщик запущен")
}

// Stop останавливает планировщик и ждёт завершения текущего запуска.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce выполняет одну чистку.
func (j *Janitor) RunOnce(ctx context.Context) int {
	if j.cache != nil {
		j.cache.Cleanup()
	}
	n, err := j.reports.CancelStale(ctx)
	if err != nil {
		logger.Log.Errorf("janitor: чистка не выполнена: %v", err)
		return 0
	}
	if n > 0 {
		logger.Log.WithField("canceled", n).Info("janitor: устаревшие отчёты отменены")
	}
	return n
}
