package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fileconverter"

// Metrics Prometheus метрики сервиса
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	assetsDeleted *prometheus.CounterVec
}

// MustNewMetrics создаёт и регистрирует метрики, паникует при ошибке регистрации
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency, including provider round trips.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "route"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being served.",
			},
		),
		assetsDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cleanup",
				Name:      "assets_deleted_total",
				Help:      "Remote asset deletions performed by the cleanup worker.",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.inFlight, m.assetsDeleted)
	return m
}

// ObserveRequest фиксирует завершённый HTTP запрос
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncInFlight отмечает начало обработки запроса
func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// DecInFlight отмечает окончание обработки запроса
func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

// ObserveAssetDeletion фиксирует результат удаления ассета
func (m *Metrics) ObserveAssetDeletion(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.assetsDeleted.WithLabelValues(result).Inc()
}
