// imports.go — запуск импорта по требованию и журнал импорта.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
	"github.com/bigkaa/foodcatalog/internal/repository"
	"github.com/bigkaa/foodcatalog/internal/scheduler"
)

// ImportTrigger — запуск импорта под защитой от наложения.
// Реализуется *scheduler.Scheduler.
type ImportTrigger interface {
	TriggerNow(ctx context.Context, trigger model.Trigger) (*model.RunOutcome, error)
}

// HistoryPage — страница журнала импорта.
type HistoryPage struct {
	Items []*model.ImportHistoryEntry
	Total int
}

// ImportService — операции импорта для HTTP API.
type ImportService struct {
	trigger ImportTrigger
	history repository.ImportHistoryRepository
	logger  *slog.Logger
}

// NewImportService создаёт сервис импорта.
func NewImportService(trigger ImportTrigger, history repository.ImportHistoryRepository, logger *slog.Logger) *ImportService {
	return &ImportService{
		trigger: trigger,
		history: history,
		logger:  logger.With(slog.String("component", "import_service")),
	}
}

// RunNow синхронно выполняет ручной запуск импорта.
// Неудачный запуск возвращается как итог, не как ошибка.
func (s *ImportService) RunNow(ctx context.Context) (*model.RunOutcome, error) {
	out, err := s.trigger.TriggerNow(ctx, model.TriggerManual)
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			s.logger.Warn("Ручной запуск отклонён: импорт уже выполняется")
			return nil, ErrImportInProgress
		}
		return nil, fmt.Errorf("запуск импорта: %w", err)
	}
	return out, nil
}

// History возвращает страницу журнала от новых записей к старым.
func (s *ImportService) History(ctx context.Context, page, limit int) (*HistoryPage, error) {
	if page < 1 || limit < 1 {
		return nil, fmt.Errorf("%w: page и limit должны быть >= 1", ErrValidation)
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset, err := pageOffset(page, limit)
	if err != nil {
		return nil, err
	}
	items, total, err := s.history.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("журнал импорта: %w", err)
	}
	return &HistoryPage{Items: items, Total: total}, nil
}

// Latest возвращает последнюю запись журнала или nil, если журнал пуст.
func (s *ImportService) Latest(ctx context.Context) (*model.ImportHistoryEntry, error) {
	e, err := s.history.Latest(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("последняя запись журнала: %w", err)
	}
	return e, nil
}
