package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Modulos-api/pkg/logger"
)

// Scheduler ejecuta RepairAll periódicamente según una expresión cron de cinco campos.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// NewScheduler registra el trabajo de reconciliación. Cada ejecución tiene su propio timeout.
func NewScheduler(r *Reconciler, spec string, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		start := time.Now()
		batch, err := r.RepairAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("reconciliación programada fallida")
			return
		}
		log.Info().
			Int("repaired", batch.Repaired).
			Int("failed", batch.Failed).
			Dur("elapsed", time.Since(start)).
			Msg("reconciliación programada terminada")
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start arranca el planificador en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("planificador de reconciliación iniciado")
}

// Stop detiene el planificador y espera a que termine la ejecución en curso o a que venza ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("reconciliación en curso abandonada al apagar")
	}
}
