package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/john/themer/internal/theme"
)

// Sync outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds the engine's prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// AppliedTotal counts palettes painted, by theme id
	AppliedTotal *prometheus.CounterVec

	// ActiveTheme is 1 for the theme currently painted and 0 for the rest
	ActiveTheme *prometheus.GaugeVec

	// SyncTotal counts finished remote syncs by outcome
	SyncTotal *prometheus.CounterVec

	// SyncDuration tracks remote sync latency
	SyncDuration prometheus.Histogram

	// CustomBuilds counts custom palettes built
	CustomBuilds prometheus.Counter

	// ContrastWarnings counts low-contrast pairs found in built palettes
	ContrastWarnings prometheus.Counter

	mu     sync.Mutex
	active string
}

var _ theme.Observer = (*Metrics)(nil)

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AppliedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "themer_theme_applied_total",
			Help: "Total palettes applied by theme id",
		}, []string{"theme"}),
		ActiveTheme: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "themer_active_theme",
			Help: "1 for the active theme id",
		}, []string{"theme"}),
		SyncTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "themer_sync_total",
			Help: "Total remote preference syncs by outcome",
		}, []string{"outcome"}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "themer_sync_duration_seconds",
			Help:    "Remote preference sync latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CustomBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "themer_custom_builds_total",
			Help: "Total custom palettes built",
		}),
		ContrastWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "themer_contrast_warnings_total",
			Help: "Total low-contrast color pairs in built palettes",
		}),
	}
}

// ThemeApplied implements theme.Observer
func (m *Metrics) ThemeApplied(themeID string) {
	m.AppliedTotal.WithLabelValues(themeID).Inc()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != "" && m.active != themeID {
		m.ActiveTheme.WithLabelValues(m.active).Set(0)
	}
	m.ActiveTheme.WithLabelValues(themeID).Set(1)
	m.active = themeID
}

// SyncFinished implements theme.Observer
func (m *Metrics) SyncFinished(themeID string, err error) {
	m.SyncTotal.WithLabelValues(SyncOutcome(err)).Inc()
}

// ObserveSync records the latency of one sync attempt
func (m *Metrics) ObserveSync(d time.Duration) {
	m.SyncDuration.Observe(d.Seconds())
}

// CustomBuilt records a custom build and its contrast warnings
func (m *Metrics) CustomBuilt(warnings int) {
	m.CustomBuilds.Inc()
	m.ContrastWarnings.Add(float64(warnings))
}

// Registry exposes the registry for tests and custom handlers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SyncOutcome maps a sync error to its label value
func SyncOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, theme.ErrNoCredential):
		return OutcomeSkipped
	default:
		return OutcomeFailure
	}
}
