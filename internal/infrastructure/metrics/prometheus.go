package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados posibles de una ejecución de sincronización.
const (
	SyncResultSuccess = "success"
	SyncResultFailure = "failure"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de peticiones HTTP atendidas.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "endpoint", "status"},
	)
	syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Ejecuciones de sincronización con MoySklad por resultado.",
		},
		[]string{"result"},
	)
	syncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sync_items_total",
			Help: "Categorías y productos escritos por sincronizaciones exitosas.",
		},
		[]string{"kind"},
	)
	syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duración de la sincronización completa.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)
	remoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moysklad_requests_total",
			Help: "Peticiones salientes a la API de MoySklad.",
		},
		[]string{"endpoint", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
	prometheus.MustRegister(syncRunsTotal, syncItemsTotal, syncDuration)
	prometheus.MustRegister(remoteRequestsTotal)
}

// RecordRequest registra métricas de una petición HTTP entrante.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordRemoteRequest registra una llamada a MoySklad. statusCode 0 = error de red.
func RecordRemoteRequest(endpoint string, statusCode int) {
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	remoteRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// SyncRecorder adaptador de métricas para el caso de uso de sincronización.
type SyncRecorder struct{}

// RecordSync registra el resultado de una ejecución completa.
func (SyncRecorder) RecordSync(success bool, categories, products int, duration time.Duration) {
	result := SyncResultFailure
	if success {
		result = SyncResultSuccess
		syncItemsTotal.WithLabelValues("category").Add(float64(categories))
		syncItemsTotal.WithLabelValues("product").Add(float64(products))
	}
	syncRunsTotal.WithLabelValues(result).Inc()
	syncDuration.Observe(duration.Seconds())
}

// Middleware mide cada petición por ruta registrada (no por URL cruda, para acotar cardinalidad).
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		RecordRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

// classifyStatus agrupa el código HTTP en su familia.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler devuelve el handler HTTP de exportación de Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
