// status.go — сводное состояние сервиса для GET /.
package service

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// Pinger проверяет соединение с базой данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LastRunSource — состояние последнего запуска в пределах процесса.
type LastRunSource interface {
	LastRun() (time.Time, bool)
}

// LatestImport — последняя запись журнала импорта (nil — журнал пуст).
type LatestImport interface {
	Latest(ctx context.Context) (*model.ImportHistoryEntry, error)
}

// MemoryUsage — потребление памяти процессом, байты.
type MemoryUsage struct {
	RSS       uint64
	HeapTotal uint64
	HeapUsed  uint64
}

// StatusReport — состояние сервиса.
type StatusReport struct {
	DatabaseOK bool
	// LastRun — нулевое значение, если импорт в этом процессе ещё не выполнялся
	LastRun    time.Time
	Uptime     time.Duration
	Memory     MemoryUsage
	LastImport *model.ImportHistoryEntry
}

// StatusService собирает состояние сервиса.
type StatusService struct {
	db        Pinger
	lastRun   LastRunSource
	imports   LatestImport
	startedAt time.Time
	now       func() time.Time
	logger    *slog.Logger
}

// NewStatusService создаёт сервис состояния. startedAt — время старта процесса.
func NewStatusService(db Pinger, lastRun LastRunSource, imports LatestImport, startedAt time.Time, logger *slog.Logger) *StatusService {
	return &StatusService{
		db:        db,
		lastRun:   lastRun,
		imports:   imports,
		startedAt: startedAt,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "status_service")),
	}
}

// Status возвращает состояние. Ошибки зависимостей отражаются в отчёте.
func (s *StatusService) Status(ctx context.Context) *StatusReport {
	r := &StatusReport{Uptime: s.now().Sub(s.startedAt)}

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("База данных недоступна", slog.String("error", err.Error()))
	} else {
		r.DatabaseOK = true
	}

	if t, ok := s.lastRun.LastRun(); ok {
		r.LastRun = t
	}

	if r.DatabaseOK && s.imports != nil {
		last, err := s.imports.Latest(ctx)
		if err != nil {
			s.logger.Warn("Ошибка чтения журнала импорта", slog.String("error", err.Error()))
		}
		r.LastImport = last
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.Memory = MemoryUsage{RSS: ms.Sys, HeapTotal: ms.HeapSys, HeapUsed: ms.HeapAlloc}

	return r
}
