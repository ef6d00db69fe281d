package service

import (
	"context"

	"github.com/lambdaless-api/internal/models"
	"github.com/lambdaless-api/internal/repository"
	"github.com/rs/zerolog"
)

type healthService struct {
	checks map[string]repository.Pinger
	log    zerolog.Logger
}

func newHealthService(repos *repository.Repositories, log zerolog.Logger) *healthService {
	checks := make(map[string]repository.Pinger)
	if repos.Comment != nil {
		checks["store"] = repos.Comment
	}
	if p, ok := repos.Sink.(repository.Pinger); ok {
		checks["sink"] = p
	}
	return &healthService{
		checks: checks,
		log:    log.With().Str("service", "health").Logger(),
	}
}

// Check pings every backend that supports it
func (s *healthService) Check(ctx context.Context) *models.HealthReport {
	report := &models.HealthReport{
		Status:     models.HealthOK,
		Components: make(map[string]string, len(s.checks)),
	}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.log.Warn().Err(err).Str("component", name).Msg("Health check failed")
			report.Components[name] = models.HealthUnavailable
			report.Status = models.HealthDegraded
			continue
		}
		report.Components[name] = models.HealthOK
	}
	return report
}
