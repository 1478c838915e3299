// Package metrics agrupa los collectors Prometheus del gateway. Viven en un
// paquete standalone para que revocation, lockout y http no se importen entre sí.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})

	// Gateway
	ClassifierDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_classifier_decisions_total",
		Help: "Decisiones del classifier por categoría de path y resultado",
	}, []string{"category", "outcome"}) // outcome: pass|anonymous|rejected|flow|error

	TokenVerifyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_token_verify_failures_total",
		Help: "Fallos de verificación de token por tipo",
	}, []string{"kind"})

	LockoutEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_lockout_events_total",
		Help: "Eventos del lockout controller",
	}, []string{"event"}) // event: failure|locked|unlocked|reset

	RegistryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_registry_errors_total",
		Help: "Errores del TTL store por operación",
	}, []string{"op"})

	NotifyFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_notify_failures_total",
		Help: "Notificaciones que el sink rechazó, por tipo de evento",
	}, []string{"event"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPInflight,
		ClassifierDecisions,
		TokenVerifyFailures,
		LockoutEvents,
		RegistryErrors,
		NotifyFailures,
	}
}

// Register registra todas las métricas en reg (o en el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer, extra ...prometheus.Collector) error {
	for _, c := range append(collectors(), extra...) {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}
