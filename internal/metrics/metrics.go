package metrics

import (
	"net/http"
	"time"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "materialmanagement"

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests    *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
	apiInflight    prometheus.Gauge
	materials      prometheus.Gauge
	lowStock       prometheus.Gauge
	inventoryValue prometheus.Gauge
	events         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		materials: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "materials_total",
			Help:      "Number of materials in the inventory.",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "materials_low_stock",
			Help:      "Materials whose quantity is at or below the minimum.",
		}),
		inventoryValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_value",
			Help:      "Sum of quantity times unit price over all materials.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "material_events_total",
			Help:      "Material events by type and publish outcome.",
		}, []string{"type", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.materials,
		m.lowStock,
		m.inventoryValue,
		m.events,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) InflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) InflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// SetInventory publishes the dashboard aggregates as gauges.
func (m *Metrics) SetInventory(stats *domain.InventoryStats) {
	if m == nil || stats == nil {
		return
	}
	m.materials.Set(float64(stats.TotalMaterials))
	m.lowStock.Set(float64(stats.LowStockCount))
	value, _ := stats.InventoryValue.Float64()
	m.inventoryValue.Set(value)
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}
