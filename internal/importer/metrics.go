package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики импорта.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fc_import_runs_total",
		Help: "Количество запусков импорта по источнику запуска и итогу",
	}, []string{"trigger", "status"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fc_import_run_duration_seconds",
		Help:    "Длительность запуска импорта",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s … ~17m
	})

	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fc_import_files_total",
		Help: "Количество обработанных файлов по результату",
	}, []string{"result"}) // ok, failed

	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fc_import_records_total",
		Help: "Количество записей по результату",
	}, []string{"result"}) // inserted, skipped

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fc_import_batch_size",
		Help:    "Размер пакета массовой вставки",
		Buckets: []float64{1, 10, 25, 50, 75, 100, 250, 500, 1000},
	})

	historyWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fc_import_history_write_errors_total",
		Help: "Количество неудачных записей журнала импорта",
	})
)
