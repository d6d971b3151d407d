// Package metrics provides Prometheus metrics for the kiosk.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediakiosk_documents_opened_total",
			Help: "Total number of PDF documents opened, by backend and status",
		},
		[]string{"backend", "status"},
	)

	pageRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediakiosk_page_render_duration_seconds",
			Help:    "Time spent rasterizing one PDF page",
			Buckets: prometheus.DefBuckets,
		},
	)

	directoryListings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediakiosk_directory_listings_total",
			Help: "Total number of directory listings, by status",
		},
		[]string{"status"},
	)

	listedItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediakiosk_listed_items_total",
			Help: "Total number of file items emitted, by kind",
		},
		[]string{"kind"},
	)

	mountEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediakiosk_mount_events_total",
			Help: "Total number of mount table changes observed",
		},
		[]string{"type"},
	)

	errorDialogs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediakiosk_error_dialogs_total",
			Help: "Total number of error dialogs shown to the user",
		},
	)
)

// RecordDocumentOpen counts one document open attempt.
func RecordDocumentOpen(backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	documentsOpened.WithLabelValues(backend, status).Inc()
}

// ObservePageRender records how long a page render took.
func ObservePageRender(d time.Duration) {
	pageRenderDuration.Observe(d.Seconds())
}

// RecordListing counts one directory listing attempt.
func RecordListing(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	directoryListings.WithLabelValues(status).Inc()
}

// RecordListedItem counts one emitted file item.
func RecordListedItem(kind string) {
	listedItems.WithLabelValues(kind).Inc()
}

// RecordMountEvent counts one mount table change.
func RecordMountEvent(eventType string) {
	mountEvents.WithLabelValues(eventType).Inc()
}

// RecordErrorDialog counts one error dialog.
func RecordErrorDialog() {
	errorDialogs.Inc()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
