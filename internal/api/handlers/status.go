// status.go — GET /: сводное состояние API.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bigkaa/foodcatalog/internal/domain/model"
)

const (
	msgStatus      = "API Detalhes"
	msgCronNotRun  = "Cron não executado ainda"
	dbConnected    = "OK"
	dbDisconnected = "FAIL"
)

type memoryUsageResponse struct {
	RSS       string `json:"rss"`
	HeapTotal string `json:"heapTotal"`
	HeapUsed  string `json:"heapUsed"`
}

type lastImportResponse struct {
	Status     model.ImportStatus `json:"status"`
	Details    string             `json:"details"`
	FinishedAt time.Time          `json:"finishedAt"`
}

type statusResponse struct {
	Message            string              `json:"message"`
	DatabaseConnection string              `json:"databaseConnection"`
	LastCronExecution  string              `json:"lastCronExecution"`
	Uptime             string              `json:"uptime"`
	MemoryUsage        memoryUsageResponse `json:"memoryUsage"`
	LastImport         *lastImportResponse `json:"lastImport,omitempty"`
}

// GetStatus — состояние API. Всегда 200, недоступность БД отражается в теле.
func (h *APIHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	report := h.status.Status(r.Context())

	resp := statusResponse{
		Message:            msgStatus,
		DatabaseConnection: dbDisconnected,
		LastCronExecution:  msgCronNotRun,
		Uptime:             fmt.Sprintf("%d segundos", int64(report.Uptime.Seconds())),
		MemoryUsage: memoryUsageResponse{
			RSS:       humanize.IBytes(report.Memory.RSS),
			HeapTotal: humanize.IBytes(report.Memory.HeapTotal),
			HeapUsed:  humanize.IBytes(report.Memory.HeapUsed),
		},
	}
	if report.DatabaseOK {
		resp.DatabaseConnection = dbConnected
	}
	if !report.LastRun.IsZero() {
		resp.LastCronExecution = report.LastRun.Format(time.RFC3339)
	}
	if e := report.LastImport; e != nil {
		resp.LastImport = &lastImportResponse{Status: e.Status, Details: e.Details, FinishedAt: e.ImportDate}
	}

	writeJSON(w, http.StatusOK, resp)
}
