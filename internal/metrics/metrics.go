package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Метрики источника кадров
	FramesProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_frames_produced_total",
		Help: "Total number of frames produced by the frame source",
	})

	// Метрики захвата
	CapturesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_captures_completed_total",
		Help: "Total number of completed capture-and-average sequences",
	})

	CapturesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_captures_failed_total",
		Help: "Total number of failed or aborted capture sequences",
	})

	// Метрики инспекции
	InspectionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_inspections_completed_total",
		Help: "Total number of completed step inspections by result",
	}, []string{"step", "result"})

	InspectionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_inspections_failed_total",
		Help: "Total number of inspection engine failures",
	})

	InspectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "station_inspection_duration_seconds",
		Help:    "Histogram of inspection engine call durations",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// Метрики отправки результатов
	SubmissionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_submissions_completed_total",
		Help: "Total number of step records acknowledged by the records API",
	})

	SubmissionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_submissions_failed_total",
		Help: "Total number of failed step record submissions",
	})

	// HTTP метрики сервера записей
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_http_requests_total",
		Help: "Total number of HTTP requests to the records API",
	}, []string{"method", "table", "status"})
)
