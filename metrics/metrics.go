// Package metrics provides Prometheus metrics for bulk transfer operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xfer_operations_total",
			Help: "Total number of bulk operations by kind and outcome",
		},
		[]string{"op", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xfer_operation_duration_seconds",
			Help:    "Bulk operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	bytesCopied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xfer_bytes_copied_total",
			Help: "Total bytes moved through the streaming copy",
		},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "xfer_bytes_uploaded_total",
			Help: "Total bytes handed to upload transports",
		},
	)

	filesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xfer_files_total",
			Help: "Total number of files processed by operation",
		},
		[]string{"op"},
	)

	deletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xfer_deletes_total",
			Help: "Total number of filesystem entries deleted",
		},
		[]string{"type"},
	)
)

// Status labels.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusCancelled = "cancelled"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation records a finished bulk operation.
func RecordOperation(op, status string, duration time.Duration) {
	operationsTotal.WithLabelValues(op, status).Inc()
	operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordFile records one file handled by op.
func RecordFile(op string) {
	filesTotal.WithLabelValues(op).Inc()
}

// RecordBytesCopied adds n to the streaming copy byte counter.
func RecordBytesCopied(n int64) {
	if n > 0 {
		bytesCopied.Add(float64(n))
	}
}

// RecordBytesUploaded adds n to the upload byte counter.
func RecordBytesUploaded(n int64) {
	if n > 0 {
		bytesUploaded.Add(float64(n))
	}
}

// RecordDelete records one deleted entry of the given type ("file" or "dir").
func RecordDelete(entryType string) {
	deletesTotal.WithLabelValues(entryType).Inc()
}
