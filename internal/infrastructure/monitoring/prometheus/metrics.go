package prometheus

import (
	"strconv"
	"time"
)

// ViewerMetrics holds every chargeview metric.  Methods are safe on a nil
// receiver so components can run without metrics.
type ViewerMetrics struct {
	// Viewer
	LoadsTotal               CounterVec
	LoadDuration             HistogramVec
	LoadedAtoms              GaugeVec
	TransitionsTotal         CounterVec
	ConsistencyFailuresTotal CounterVec

	// Infrastructure
	DownloadsTotal    CounterVec
	DownloadBytes     HistogramVec
	CacheAccessTotal  CounterVec
	EventsPublished   CounterVec
	StreamSubscribers GaugeVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultLoadDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultSizeBuckets         = []float64{1e3, 1e4, 1e5, 1e6, 1e7, 1e8}
)

// NewViewerMetrics registers the metric set on collector.
func NewViewerMetrics(collector MetricsCollector) *ViewerMetrics {
	m := &ViewerMetrics{}

	m.LoadsTotal = collector.RegisterCounter("structure_loads_total", "Structure loads", "format", "profile", "status")
	m.LoadDuration = collector.RegisterHistogram("structure_load_duration_seconds", "Structure load duration including download", DefaultLoadDurationBuckets, "format")
	m.LoadedAtoms = collector.RegisterGauge("structure_atoms", "Atom count of the loaded structure", "format")
	m.TransitionsTotal = collector.RegisterCounter("state_transitions_total", "Viewer state transitions", "operation", "value", "status")
	m.ConsistencyFailuresTotal = collector.RegisterCounter("consistency_failures_total", "Structures rejected by the charge consistency check", "format")

	m.DownloadsTotal = collector.RegisterCounter("downloads_total", "Structure downloads", "scheme", "status")
	m.DownloadBytes = collector.RegisterHistogram("download_size_bytes", "Downloaded structure size", DefaultSizeBuckets, "scheme")
	m.CacheAccessTotal = collector.RegisterCounter("cache_access_total", "Download cache lookups", "cache", "result")
	m.EventsPublished = collector.RegisterCounter("events_published_total", "Control-state events delivered to observers", "sink", "status")
	m.StreamSubscribers = collector.RegisterGauge("stream_subscribers", "Connected state-stream clients", "stream")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// LoadTimer starts timing one load of format.  On a nil receiver the timer
// only measures.
func (m *ViewerMetrics) LoadTimer(format string) *Timer {
	if m == nil {
		return NewTimer(nil)
	}
	return NewTimer(m.LoadDuration.WithLabelValues(format))
}

// RecordLoad records one viewer load outcome.  Duration goes through LoadTimer.
func (m *ViewerMetrics) RecordLoad(format, profile string, atoms int, err error) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(format, profile, status(err)).Inc()
	if err == nil {
		m.LoadedAtoms.WithLabelValues(format).Set(float64(atoms))
	}
}

// RecordTransition records a type, color or charge-set change.
func (m *ViewerMetrics) RecordTransition(operation, value string, err error) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(operation, value, status(err)).Inc()
}

// RecordConsistencyFailure counts a rejected structure.
func (m *ViewerMetrics) RecordConsistencyFailure(format string) {
	if m == nil {
		return
	}
	m.ConsistencyFailuresTotal.WithLabelValues(format).Inc()
}

// RecordDownload records one fetch.
func (m *ViewerMetrics) RecordDownload(scheme string, size int, err error) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(scheme, status(err)).Inc()
	if err == nil {
		m.DownloadBytes.WithLabelValues(scheme).Observe(float64(size))
	}
}

// RecordCacheAccess records a cache hit or miss.
func (m *ViewerMetrics) RecordCacheAccess(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheAccessTotal.WithLabelValues(cache, result).Inc()
}

// RecordEvent records delivery of a state event to sink.
func (m *ViewerMetrics) RecordEvent(sink string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(sink, status(err)).Inc()
}

// SubscriberConnected moves the subscriber gauge of stream up or down.
func (m *ViewerMetrics) SubscriberConnected(stream string, connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.StreamSubscribers.WithLabelValues(stream).Inc()
	} else {
		m.StreamSubscribers.WithLabelValues(stream).Dec()
	}
}

// RecordHTTPRequest records a finished request.
func (m *ViewerMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest increments the active gauge and returns the decrement.
func (m *ViewerMetrics) TrackActiveRequest(method string) func() {
	if m == nil {
		return func() {}
	}
	g := m.HTTPActiveRequests.WithLabelValues(method)
	g.Inc()
	return g.Dec
}

// RecordError counts an error by component and error code.
func (m *ViewerMetrics) RecordError(component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
