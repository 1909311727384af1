package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hydromet/orobnat-etl/internal/domain"
	"github.com/hydromet/orobnat-etl/internal/observability"
)

// ErrNoMunicipalities is returned when the cities table holds no active rows;
// the CLI maps it to a distinct exit status.
var ErrNoMunicipalities = errors.New("no active municipalities found")

// MunicipalityProcessor runs the full pipeline for one municipality.
type MunicipalityProcessor interface {
	Process(ctx context.Context, m domain.Municipality) (string, error)
}

// Failure records one municipality's pipeline error.
type Failure struct {
	Name string
	Err  string
}

// Summary is the terminal report of a batch run.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// Runner processes municipalities strictly sequentially: one item is fully
// fetched, parsed, mapped, and persisted before the next begins.
type Runner struct {
	source    MunicipalitySource
	processor MunicipalityProcessor
	logger    *slog.Logger
	metrics   *observability.Metrics

	// sleep is the pause between municipalities, a courtesy to the registry's
	// implicit rate limits. No pause follows the last item.
	sleep time.Duration
	// limit truncates the batch to the first N municipalities; 0 means all.
	limit int
}

// NewRunner creates a batch runner.
func NewRunner(source MunicipalitySource, processor MunicipalityProcessor, logger *slog.Logger, metrics *observability.Metrics, sleep time.Duration, limit int) *Runner {
	return &Runner{
		source:    source,
		processor: processor,
		logger:    logger,
		metrics:   metrics,
		sleep:     sleep,
		limit:     limit,
	}
}

// Run executes the batch. One municipality's failure is recorded and the run
// advances to the next; only a failure to load the batch itself, an empty
// batch, or context cancellation ends the run early.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	cities, err := r.source.ActiveMunicipalities(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load municipalities: %w", err)
	}
	if len(cities) == 0 {
		return Summary{}, ErrNoMunicipalities
	}
	if r.limit > 0 && r.limit < len(cities) {
		cities = cities[:r.limit]
	}

	r.metrics.BatchRunning.Set(1)
	defer r.metrics.BatchRunning.Set(0)

	sum := Summary{Attempted: len(cities)}
	r.logger.Info("batch started", "municipalities", len(cities), "sleep", r.sleep)

	for i, m := range cities {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}

		id, err := r.processor.Process(ctx, m)
		r.metrics.MunicipalitiesProcessed.Inc()
		if err != nil {
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Name: m.Label(), Err: err.Error()})
			r.metrics.MunicipalitiesFailed.Inc()
			r.logger.Error("municipality failed",
				"city", m.Label(), "position", i+1, "of", len(cities), "error", err)
		} else {
			sum.Succeeded++
			r.logger.Info("municipality processed",
				"city", m.Label(), "position", i+1, "of", len(cities), "id", id)
		}

		if i < len(cities)-1 && !sleepWithContext(ctx, r.sleep) {
			return sum, ctx.Err()
		}
	}

	return sum, nil
}

// sleepWithContext pauses for d, returning false if the context ended first.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
