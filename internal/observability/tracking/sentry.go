// Package tracking reporta errores 5xx y panics a Sentry. Sin DSN configurado
// todas las funciones son no-op.
package tracking

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config de Sentry.
type Config struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// Init inicializa el cliente global. DSN vacío no hace nada.
func Init(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}
	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       rate,
		AttachStacktrace: true,
	})
}

// Enabled reporta si hay un cliente configurado.
func Enabled() bool { return sentry.CurrentHub().Client() != nil }

// CaptureError envía err con tags opcionales (ej: component, op).
func CaptureError(_ context.Context, err error, tags map[string]string) {
	if err == nil || !Enabled() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic envía el valor recuperado junto con el stack.
func CapturePanic(rec any, stack []byte, tags map[string]string) {
	if !Enabled() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetExtra("panic", rec)
		scope.SetExtra("stack", string(stack))
		sentry.CaptureMessage("panic in request")
	})
}

// Flush espera hasta timeout a que se envíen los eventos pendientes.
func Flush(timeout time.Duration) {
	if Enabled() {
		sentry.Flush(timeout)
	}
}
