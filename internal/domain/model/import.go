package model

import (
	"time"

	"github.com/google/uuid"
)

// ImportStatus — итог запуска импорта.
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportFailure ImportStatus = "failure"
)

// Trigger — источник запуска импорта.
type Trigger string

const (
	// TriggerSchedule — ежедневный запуск планировщика.
	TriggerSchedule Trigger = "schedule"
	// TriggerManual — запуск через POST /products/import.
	TriggerManual Trigger = "manual"
	// TriggerCLI — запуск командой food-catalog import.
	TriggerCLI Trigger = "cli"
)

// ImportHistoryEntry — запись журнала импорта (только добавление, без изменений).
type ImportHistoryEntry struct {
	ID              uuid.UUID    `json:"id"`
	ImportDate      time.Time    `json:"importDate"`
	Status          ImportStatus `json:"status"`
	Details         string       `json:"details"`
	Trigger         Trigger      `json:"trigger"`
	StartedAt       time.Time    `json:"startedAt"`
	FilesTotal      int          `json:"filesTotal"`
	FilesFailed     int          `json:"filesFailed"`
	RecordsInserted int          `json:"recordsInserted"`
	LinesSkipped    int          `json:"linesSkipped"`
}

// FileResult — результат обработки одного файла.
type FileResult struct {
	Name     string `json:"name"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// RunOutcome — итог одного запуска импорта.
type RunOutcome struct {
	Status          ImportStatus `json:"status"`
	Detail          string       `json:"detail"`
	Trigger         Trigger      `json:"trigger"`
	StartedAt       time.Time    `json:"startedAt"`
	FinishedAt      time.Time    `json:"finishedAt"`
	FilesTotal      int          `json:"filesTotal"`
	FilesFailed     int          `json:"filesFailed"`
	RecordsInserted int          `json:"recordsInserted"`
	LinesSkipped    int          `json:"linesSkipped"`
	Files           []FileResult `json:"files,omitempty"`
}

// Succeeded возвращает true для успешного запуска.
func (o *RunOutcome) Succeeded() bool {
	return o.Status == ImportSuccess
}
