package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsSkippedTotal — запуски, отклонённые из-за активного запуска.
	runsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fc_scheduler_runs_skipped_total",
		Help: "Количество запусков импорта, пропущенных из-за активного запуска",
	}, []string{"trigger"})

	nextRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fc_scheduler_next_run_timestamp_seconds",
		Help: "Время следующего планового запуска (unix)",
	})

	lastRunTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fc_scheduler_last_run_timestamp_seconds",
		Help: "Время завершения последнего запуска (unix)",
	})
)
