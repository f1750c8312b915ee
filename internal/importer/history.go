package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

// HistoryStore — хранилище журнала импорта.
type HistoryStore interface {
	Append(ctx context.Context, e *model.ImportHistoryEntry) error
}

// HistoryRecorder записывает итог каждого запуска. Ошибка записи
// логируется и не влияет на итог запуска.
type HistoryRecorder struct {
	store   HistoryStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewHistoryRecorder создаёт журнал запусков.
func NewHistoryRecorder(store HistoryStore, logger *slog.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		store:   store,
		timeout: 5 * time.Second,
		logger:  logger.With(slog.String("component", "import_history")),
	}
}

// Record добавляет запись журнала по итогу запуска.
func (r *HistoryRecorder) Record(ctx context.Context, o *model.RunOutcome) {
	entry := &model.ImportHistoryEntry{
		ID:              uuid.New(),
		ImportDate:      o.FinishedAt,
		Status:          o.Status,
		Details:         o.Detail,
		Trigger:         o.Trigger,
		StartedAt:       o.StartedAt,
		FilesTotal:      o.FilesTotal,
		FilesFailed:     o.FilesFailed,
		RecordsInserted: o.RecordsInserted,
		LinesSkipped:    o.LinesSkipped,
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.Append(ctx, entry); err != nil {
		historyWriteErrors.Inc()
		r.logger.Error("Ошибка записи журнала импорта",
			slog.String("status", string(entry.Status)),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Info("Журнал импорта записан",
		slog.String("id", entry.ID.String()),
		slog.String("status", string(entry.Status)),
	)
}
