package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

type mockHistoryStore struct {
	appendFn func(ctx context.Context, e *model.ImportHistoryEntry) error
	entries  []*model.ImportHistoryEntry
}

func (m *mockHistoryStore) Append(ctx context.Context, e *model.ImportHistoryEntry) error {
	if m.appendFn != nil {
		if err := m.appendFn(ctx, e); err != nil {
			return err
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func TestHistoryRecorder_Record(t *testing.T) {
	store := &mockHistoryStore{}
	rec := NewHistoryRecorder(store, testLogger())

	started := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	out := &model.RunOutcome{
		Status:          model.ImportFailure,
		Detail:          FailurePrefix + "boom",
		Trigger:         model.TriggerSchedule,
		StartedAt:       started,
		FinishedAt:      started.Add(90 * time.Second),
		FilesTotal:      9,
		FilesFailed:     1,
		RecordsInserted: 800,
		LinesSkipped:    3,
	}
	rec.Record(context.Background(), out)

	if len(store.entries) != 1 {
		t.Fatalf("записей = %d, ожидалась 1", len(store.entries))
	}
	e := store.entries[0]
	if e.ID == uuid.Nil {
		t.Error("ID не сгенерирован")
	}
	if !e.ImportDate.Equal(out.FinishedAt) {
		t.Errorf("ImportDate = %v, ожидалось время завершения %v", e.ImportDate, out.FinishedAt)
	}
	if !e.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v", e.StartedAt)
	}
	if e.Status != model.ImportFailure || e.Details != out.Detail || e.Trigger != model.TriggerSchedule {
		t.Errorf("запись = %+v", e)
	}
	if e.FilesTotal != 9 || e.FilesFailed != 1 || e.RecordsInserted != 800 || e.LinesSkipped != 3 {
		t.Errorf("счётчики = %+v", e)
	}
}

func TestHistoryRecorder_UniqueIDs(t *testing.T) {
	store := &mockHistoryStore{}
	rec := NewHistoryRecorder(store, testLogger())
	out := &model.RunOutcome{Status: model.ImportSuccess, Detail: SuccessDetail}

	rec.Record(context.Background(), out)
	rec.Record(context.Background(), out)

	if store.entries[0].ID == store.entries[1].ID {
		t.Error("записи журнала должны иметь разные ID")
	}
}

func TestHistoryRecorder_ErrorSwallowed(t *testing.T) {
	var gotDeadline bool
	store := &mockHistoryStore{appendFn: func(ctx context.Context, _ *model.ImportHistoryEntry) error {
		_, gotDeadline = ctx.Deadline()
		return errors.New("database is down")
	}}
	rec := NewHistoryRecorder(store, testLogger())

	// Не должно паниковать и не должно влиять на вызывающего
	rec.Record(context.Background(), &model.RunOutcome{Status: model.ImportSuccess})

	if !gotDeadline {
		t.Error("запись журнала должна выполняться с таймаутом")
	}
	if len(store.entries) != 0 {
		t.Errorf("записей = %d", len(store.entries))
	}
}
