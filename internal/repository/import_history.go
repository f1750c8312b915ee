package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

const historyColumns = `id, import_date, status, details, triggered_by, started_at,
	files_total, files_failed, records_inserted, lines_skipped`

// ImportHistoryRepository — журнал запусков импорта (только добавление).
type ImportHistoryRepository interface {
	// Append добавляет запись журнала.
	Append(ctx context.Context, e *model.ImportHistoryEntry) error
	// List возвращает записи от новых к старым и общее количество.
	List(ctx context.Context, limit, offset int) ([]*model.ImportHistoryEntry, int, error)
	// Latest возвращает последнюю запись или ErrNotFound.
	Latest(ctx context.Context) (*model.ImportHistoryEntry, error)
}

type importHistoryRepo struct {
	db DBTX
}

// NewImportHistoryRepository создаёт репозиторий журнала импорта.
func NewImportHistoryRepository(db DBTX) ImportHistoryRepository {
	return &importHistoryRepo{db: db}
}

// Append добавляет запись. Нулевая ImportDate заменяется на NOW().
func (r *importHistoryRepo) Append(ctx context.Context, e *model.ImportHistoryEntry) error {
	query := `
		INSERT INTO import_history (
			id, import_date, status, details, triggered_by, started_at,
			files_total, files_failed, records_inserted, lines_skipped
		) VALUES ($1, COALESCE($2, NOW()), $3, $4, $5, COALESCE($6, NOW()), $7, $8, $9, $10)
		RETURNING import_date, started_at`

	err := r.db.QueryRow(ctx, query,
		e.ID, nullTime(e.ImportDate), string(e.Status), e.Details, string(e.Trigger), nullTime(e.StartedAt),
		e.FilesTotal, e.FilesFailed, e.RecordsInserted, e.LinesSkipped,
	).Scan(&e.ImportDate, &e.StartedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: запись журнала %s", ErrConflict, e.ID)
		}
		return fmt.Errorf("ошибка записи журнала импорта: %w", err)
	}
	return nil
}

// List возвращает записи журнала от новых к старым.
func (r *importHistoryRepo) List(ctx context.Context, limit, offset int) ([]*model.ImportHistoryEntry, int, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM import_history ORDER BY import_date DESC, id LIMIT $1 OFFSET $2`,
		historyColumns,
	)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения журнала импорта: %w", err)
	}
	defer rows.Close()

	result := make([]*model.ImportHistoryEntry, 0, limit)
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка итерации результатов: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM import_history`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта записей журнала: %w", err)
	}

	return result, total, nil
}

// Latest возвращает последнюю запись журнала.
func (r *importHistoryRepo) Latest(ctx context.Context) (*model.ImportHistoryEntry, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM import_history ORDER BY import_date DESC, id LIMIT 1`,
		historyColumns,
	)

	e, err := scanHistory(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения последней записи журнала: %w", err)
	}
	return e, nil
}

func scanHistory(row pgx.Row) (*model.ImportHistoryEntry, error) {
	e := &model.ImportHistoryEntry{}
	var status, trigger string
	err := row.Scan(
		&e.ID, &e.ImportDate, &status, &e.Details, &trigger, &e.StartedAt,
		&e.FilesTotal, &e.FilesFailed, &e.RecordsInserted, &e.LinesSkipped,
	)
	if err != nil {
		return nil, err
	}
	e.Status = model.ImportStatus(status)
	e.Trigger = model.Trigger(trigger)
	return e, nil
}
