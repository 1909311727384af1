// Package pipeline orchestrates the scrape-parse-normalize-upsert cycle per
// municipality and the sequential batch runner over all of them.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hydromet/orobnat-etl/internal/adapter/report"
	"github.com/hydromet/orobnat-etl/internal/domain"
	"github.com/hydromet/orobnat-etl/internal/observability"
)

// Session is one cookie-scoped conversation with the registry.
type Session interface {
	Warmup(ctx context.Context)
	Submit(ctx context.Context, payload domain.SearchPayload) (string, error)
}

// SessionFactory opens a fresh registry session. The runner calls it once per
// municipality so cookie state never crosses items.
type SessionFactory func() (Session, error)

// Store persists the four record types. Each call is an idempotent upsert
// keyed by the record's declared conflict key.
type Store interface {
	UpsertCriteria(ctx context.Context, c domain.Criteria) error
	UpsertGeneralInfo(ctx context.Context, g domain.GeneralInfo) error
	UpsertConformity(ctx context.Context, c domain.Conformity) error
	UpsertResultRows(ctx context.Context, rows []domain.ResultRow) error
}

// MunicipalitySource reads the active municipality records.
type MunicipalitySource interface {
	ActiveMunicipalities(ctx context.Context) ([]domain.Municipality, error)
}

// PersistenceError reports a failed upsert and which record type it targeted.
type PersistenceError struct {
	Table string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Table, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Processor runs the full pipeline for one municipality: build payload, open
// session, fetch, parse, map, persist.
type Processor struct {
	sessions SessionFactory
	store    Store
	defaults domain.SearchDefaults
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewProcessor wires the pipeline stages together.
func NewProcessor(sessions SessionFactory, store Store, defaults domain.SearchDefaults, logger *slog.Logger, metrics *observability.Metrics) *Processor {
	return &Processor{
		sessions: sessions,
		store:    store,
		defaults: defaults,
		logger:   logger,
		metrics:  metrics,
	}
}

// Process fetches and ingests one municipality's report, returning the
// synthesized analysis identifier.
func (p *Processor) Process(ctx context.Context, m domain.Municipality) (string, error) {
	payload := domain.BuildSearchPayload(m, p.defaults)

	sess, err := p.sessions()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	sess.Warmup(ctx)

	start := time.Now()
	page, err := sess.Submit(ctx, payload)
	p.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	sections, err := report.Parse(strings.NewReader(page), payload)
	if err != nil {
		return "", err
	}

	p.logger.Debug("report resolved",
		"city", m.Label(),
		"departement", sections.DepartementLabel,
		"commune", sections.CommuneLabel,
	)

	return p.ingest(ctx, sections, payload)
}

// ProcessHTML runs one parse-map-upsert cycle from an already-fetched
// document, for offline debugging against a saved report.
func (p *Processor) ProcessHTML(ctx context.Context, r io.Reader, stub domain.SearchPayload) (string, error) {
	sections, err := report.Parse(r, stub)
	if err != nil {
		return "", err
	}
	return p.ingest(ctx, sections, stub)
}

func (p *Processor) ingest(ctx context.Context, sections domain.ParsedSections, payload domain.SearchPayload) (string, error) {
	// A missing or unparseable sampling date leaves the zero time, which
	// SynthesizeID replaces with today.
	sampledAt, _ := sections.SampleDate()
	id := domain.SynthesizeID(sampledAt, payload.Commune)

	records, err := domain.MapRecords(sections, payload, id)
	if err != nil {
		return "", err
	}

	if n := len(records.UnmatchedParameters); n > 0 {
		p.metrics.ParametersDropped.Add(float64(n))
		p.logger.Debug("parameters without allow-list match dropped",
			"id", id, "count", n, "parameters", records.UnmatchedParameters)
	}

	if err := p.persist(ctx, records); err != nil {
		return "", err
	}
	return id, nil
}

// persist writes the four record types in foreign-key order: parent criteria
// first, result rows last and batched. Earlier writes are not rolled back
// when a later one fails; a re-run with the same report heals the gap because
// every write is an idempotent upsert under the same identifier.
func (p *Processor) persist(ctx context.Context, recs domain.Records) error {
	if err := p.store.UpsertCriteria(ctx, recs.Criteria); err != nil {
		return &PersistenceError{Table: "criteres", Err: err}
	}
	if err := p.store.UpsertGeneralInfo(ctx, recs.GeneralInfo); err != nil {
		return &PersistenceError{Table: "informations", Err: err}
	}
	if err := p.store.UpsertConformity(ctx, recs.Conformity); err != nil {
		return &PersistenceError{Table: "conformite", Err: err}
	}
	if err := p.store.UpsertResultRows(ctx, recs.Results); err != nil {
		return &PersistenceError{Table: "resultats", Err: err}
	}
	p.metrics.ResultRowsUpserted.Add(float64(len(recs.Results)))
	return nil
}
