package notify

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"go.uber.org/zap"
)

// LogSink escribe los eventos al logger (modo dev). Omite Secret.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, e Event) error {
	fields := []zap.Field{
		logger.Component("notify.log"),
		logger.String("event_id", e.ID),
		logger.String("event_type", string(e.Type)),
		logger.Subject(e.Subject),
		logger.Bool("has_secret", e.Secret != ""),
	}
	for k, v := range e.Data {
		fields = append(fields, zap.String("data."+k, v))
	}
	logger.From(ctx).Info("account event", fields...)
	return nil
}
