package observability

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MetricType represents the type of metric
type MetricType int

const (
	CounterType MetricType = iota
	HistogramType
)

// Metric represents a generic metric interface
type Metric interface {
	Type() MetricType
	Name() string
	Help() string
}

// Counter represents a monotonic counter metric
type Counter struct {
	name  string
	help  string
	value float64
	mu    sync.RWMutex
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds the given value to the counter. Negative deltas are ignored.
func (c *Counter) Add(delta float64) {
	if c == nil || delta < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
}

// Value returns the current counter value
func (c *Counter) Value() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Counter) Type() MetricType { return CounterType }
func (c *Counter) Name() string     { return c.name }
func (c *Counter) Help() string     { return c.help }

// Histogram represents a histogram metric
type Histogram struct {
	name    string
	help    string
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
	mu      sync.RWMutex
}

// DefaultBuckets suit durations in seconds of local, disk-bound work
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// NewHistogram creates a new histogram metric
func NewHistogram(name, help string, buckets []float64) *Histogram {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)

	return &Histogram{
		name:    name,
		help:    help,
		buckets: sorted,
		counts:  make([]uint64, len(sorted)),
	}
}

// Observe adds an observation to the histogram
func (h *Histogram) Observe(value float64) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++
	for i, bucket := range h.buckets {
		if value <= bucket {
			h.counts[i]++
		}
	}
}

// Count returns the total count of observations
func (h *Histogram) Count() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Sum returns the sum of all observations
func (h *Histogram) Sum() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sum
}

func (h *Histogram) Type() MetricType { return HistogramType }
func (h *Histogram) Name() string     { return h.name }
func (h *Histogram) Help() string     { return h.help }

// MetricsRegistry manages all metrics
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	prefix  string
}

// NewMetricsRegistry creates a new metrics registry
func NewMetricsRegistry(prefix string) *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]Metric),
		prefix:  prefix,
	}
}

func (r *MetricsRegistry) fullName(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "_" + name
}

// Register registers a new metric
func (r *MetricsRegistry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.fullName(metric.Name())
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %s already registered", name)
	}
	r.metrics[name] = metric
	return nil
}

// Counter returns the counter registered under name, creating it if needed.
// It returns nil when name is taken by a metric of another type.
func (r *MetricsRegistry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.fullName(name)
	if m, ok := r.metrics[full]; ok {
		c, _ := m.(*Counter)
		return c
	}
	c := NewCounter(name, help)
	r.metrics[full] = c
	return c
}

// Histogram returns the histogram registered under name, creating it if needed
func (r *MetricsRegistry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.fullName(name)
	if m, ok := r.metrics[full]; ok {
		h, _ := m.(*Histogram)
		return h
	}
	h := NewHistogram(name, help, buckets)
	r.metrics[full] = h
	return h
}

// GetMetric returns a metric by name
func (r *MetricsRegistry) GetMetric(name string) (Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	metric, exists := r.metrics[r.fullName(name)]
	return metric, exists
}

// Snapshot returns the current value of every counter and the sum and count
// of every histogram, keyed by full metric name.
func (r *MetricsRegistry) Snapshot() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]interface{}, len(r.metrics))
	for name, metric := range r.metrics {
		switch m := metric.(type) {
		case *Counter:
			out[name] = m.Value()
		case *Histogram:
			out[name+"_sum"] = m.Sum()
			out[name+"_count"] = m.Count()
		}
	}
	return out
}

// Export renders every metric in the Prometheus text format, sorted by name
func (r *MetricsRegistry) Export() string {
	r.mu.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	metrics := make(map[string]Metric, len(r.metrics))
	for k, v := range r.metrics {
		metrics[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		switch m := metrics[name].(type) {
		case *Counter:
			fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n", name, m.Help(), name)
			fmt.Fprintf(&b, "%s %g\n", name, m.Value())
		case *Histogram:
			fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s histogram\n", name, m.Help(), name)
			m.mu.RLock()
			for i, bucket := range m.buckets {
				fmt.Fprintf(&b, "%s_bucket{le=\"%g\"} %d\n", name, bucket, m.counts[i])
			}
			fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", name, m.count)
			fmt.Fprintf(&b, "%s_sum %g\n", name, m.sum)
			fmt.Fprintf(&b, "%s_count %d\n", name, m.count)
			m.mu.RUnlock()
		}
	}
	return b.String()
}
