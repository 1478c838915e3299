// Package health contiene el service para health checks.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/authgate/internal/http/dto/health"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// Check verifica una dependencia (TTL store, account store).
type Check func(ctx context.Context) error

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Checks  map[string]Check
	Version string
	Timeout time.Duration
}

// HealthService define las operaciones de health check.
type HealthService interface {
	Live(ctx context.Context) dto.HealthResponse
	// Ready retorna ok=false si algún componente falla.
	Ready(ctx context.Context) (dto.HealthResponse, bool)
}

type healthService struct{ deps Deps }

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Second
	}
	return &healthService{deps: deps}
}

func (s *healthService) Live(context.Context) dto.HealthResponse {
	return dto.HealthResponse{Status: "ok", Version: s.deps.Version, Timestamp: time.Now().UTC()}
}

func (s *healthService) Ready(ctx context.Context) (dto.HealthResponse, bool) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"), logger.Op("Ready"))

	resp := dto.HealthResponse{
		Status:     "ok",
		Version:    s.deps.Version,
		Components: make(map[string]string, len(s.deps.Checks)),
		Timestamp:  time.Now().UTC(),
	}
	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ok := true
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
		err := s.deps.Checks[name](cctx)
		cancel()
		if err != nil {
			ok = false
			resp.Components[name] = "down"
			log.Warn("component down", logger.String("check", name), logger.Err(err))
			continue
		}
		resp.Components[name] = "ok"
	}
	if !ok {
		resp.Status = "degraded"
	}
	return resp, ok
}
