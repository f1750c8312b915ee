package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockLastRun struct {
	t  time.Time
	ok bool
}

func (m *mockLastRun) LastRun() (time.Time, bool) { return m.t, m.ok }

func TestStatusService_Status(t *testing.T) {
	started := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	lastRun := started.Add(time.Hour)
	history := &mockHistoryRepo{latestFn: func(context.Context) (*model.ImportHistoryEntry, error) {
		return &model.ImportHistoryEntry{Status: model.ImportSuccess}, nil
	}}

	svc := NewStatusService(&mockPinger{}, &mockLastRun{t: lastRun, ok: true},
		NewImportService(nil, history, testLogger()), started, testLogger())
	svc.now = func() time.Time { return started.Add(90 * time.Second) }

	r := svc.Status(context.Background())
	if !r.DatabaseOK {
		t.Error("DatabaseOK = false")
	}
	if r.Uptime != 90*time.Second {
		t.Errorf("Uptime = %v, ожидалось 90s", r.Uptime)
	}
	if !r.LastRun.Equal(lastRun) {
		t.Errorf("LastRun = %v", r.LastRun)
	}
	if r.LastImport == nil || r.LastImport.Status != model.ImportSuccess {
		t.Errorf("LastImport = %+v", r.LastImport)
	}
	if r.Memory.RSS == 0 || r.Memory.HeapUsed == 0 {
		t.Errorf("Memory = %+v", r.Memory)
	}
}

func TestStatusService_DatabaseDown(t *testing.T) {
	historyCalled := false
	history := &mockHistoryRepo{latestFn: func(context.Context) (*model.ImportHistoryEntry, error) {
		historyCalled = true
		return nil, nil
	}}
	svc := NewStatusService(&mockPinger{err: errors.New("refused")}, &mockLastRun{},
		NewImportService(nil, history, testLogger()), time.Now(), testLogger())

	r := svc.Status(context.Background())
	if r.DatabaseOK {
		t.Error("DatabaseOK = true при недоступной БД")
	}
	if !r.LastRun.IsZero() {
		t.Errorf("LastRun = %v, ожидалось нулевое значение", r.LastRun)
	}
	if historyCalled {
		t.Error("журнал не читается при недоступной БД")
	}
}
