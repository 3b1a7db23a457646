package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/core/ports"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// RatesService aggregates observations from independent rate sources into a
// single rate table snapshot. Refreshes merge incrementally on top of the
// previous table and swap the table reference atomically, so readers always
// see either the prior complete table or the new one.
type RatesService struct {
	sources       []ports.RateSource
	ratesRepo     portsrepo.RatesRepositoryFacade
	logger        *slog.Logger
	maxHistoryLen int

	table atomic.Pointer[domain.RateTable]

	// refreshMu serializes refresh cycles; it never blocks readers.
	refreshMu sync.Mutex
	histories map[string][]domain.RateObservation
}

// NewRatesService seeds the current table from the persisted snapshot so a
// restart does not begin from an empty table.
func NewRatesService(ctx context.Context, ratesRepo portsrepo.RatesRepositoryFacade, sources []ports.RateSource, maxHistoryLen int, logger *slog.Logger) (*RatesService, error) {
	table, err := ratesRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate snapshot: %w", err)
	}
	s := &RatesService{
		sources:       sources,
		ratesRepo:     ratesRepo,
		logger:        logger,
		maxHistoryLen: maxHistoryLen,
		histories:     map[string][]domain.RateObservation{},
	}
	s.table.Store(table)
	return s, nil
}

// Current returns the table snapshot readers should consult.
func (s *RatesService) Current() *domain.RateTable {
	return s.table.Load()
}

// Rate looks up a rate in the current snapshot.
func (s *RatesService) Rate(fromCurrency, toCurrency string) (decimal.Decimal, error) {
	return s.Current().Rate(fromCurrency, toCurrency)
}

// TopN ranks the current snapshot's pairs, strongest direction first.
func (s *RatesService) TopN(n int) ([]domain.RankedRate, error) {
	return s.Current().TopN(n)
}

// Refresh fetches from every registered source (or only the one named by
// sourceFilter), merges into a new table and swaps it in. A failing source
// is logged and counted without aborting the cycle; its previously known
// pairs survive because the merge starts from the prior table. When every
// source fails the prior table is returned unchanged with failures equal to
// the source count.
func (s *RatesService) Refresh(ctx context.Context, sourceFilter string) (*domain.RateTable, int, error) {
	selected, err := s.selectSources(sourceFilter)
	if err != nil {
		return nil, 0, err
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	refreshID := uuid.NewString()
	lastRefresh := time.Now()
	pairs := s.Current().Pairs()

	failures := 0
	merged := 0
	for _, source := range selected {
		observations, err := source.FetchObservations(ctx)
		if err != nil {
			failures++
			s.logger.Error("rate source failed",
				slog.String("refresh_id", refreshID),
				slog.String("source", source.Name()),
				slog.String("failure_kind", classifySourceFailure(err)),
				slog.String("error", err.Error()))
			continue
		}
		for _, obs := range observations {
			pairs[domain.PairKey(obs.FromCurrency, obs.ToCurrency)] = domain.Rate{
				Rate:      obs.Rate,
				UpdatedAt: obs.Timestamp,
				Source:    obs.Source,
			}
		}
		merged += len(observations)
		s.appendHistory(source.Name(), observations)
	}

	table := s.Current()
	if failures < len(selected) || len(selected) == 0 {
		table = domain.NewRateTable(pairs, lastRefresh)
		s.table.Store(table)
	}

	persistErr := s.persistArtifacts(ctx, table)

	s.logger.Info("rates refresh finished",
		slog.String("refresh_id", refreshID),
		slog.Int("sources", len(selected)),
		slog.Int("failures", failures),
		slog.Int("observations_merged", merged),
		slog.Int("pairs_known", table.Len()),
		slog.Bool("persisted", persistErr == nil))

	return table, failures, persistErr
}

// History returns a copy of the bounded observation history for one source.
func (s *RatesService) History(sourceName string) []domain.RateObservation {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	history := s.histories[sourceName]
	out := make([]domain.RateObservation, len(history))
	copy(out, history)
	return out
}

func (s *RatesService) selectSources(sourceFilter string) ([]ports.RateSource, error) {
	if sourceFilter == "" {
		return s.sources, nil
	}
	for _, source := range s.sources {
		if source.Name() == sourceFilter {
			return []ports.RateSource{source}, nil
		}
	}
	return nil, apperrors.UnknownSourceError{Name: sourceFilter}
}

// appendHistory appends to the source's ring, evicting the oldest entries
// past maxHistoryLen.
func (s *RatesService) appendHistory(sourceName string, observations []domain.RateObservation) {
	history := append(s.histories[sourceName], observations...)
	if len(history) > s.maxHistoryLen {
		history = history[len(history)-s.maxHistoryLen:]
	}
	s.histories[sourceName] = history
}

// persistArtifacts writes the snapshot and the raw observation history as
// two separate durable artifacts. A failure here never invalidates the
// in-memory table; the caller may retry with another refresh.
func (s *RatesService) persistArtifacts(ctx context.Context, table *domain.RateTable) error {
	var errs []error
	if err := s.ratesRepo.SaveSnapshot(ctx, table); err != nil {
		errs = append(errs, fmt.Errorf("failed to save rate snapshot: %w", err))
	}
	var all []domain.RateObservation
	for _, source := range s.sources {
		all = append(all, s.histories[source.Name()]...)
	}
	if err := s.ratesRepo.SaveHistory(ctx, all); err != nil {
		errs = append(errs, fmt.Errorf("failed to save observation history: %w", err))
	}
	return errors.Join(errs...)
}

func classifySourceFailure(err error) string {
	var transportErr apperrors.TransportError
	var httpErr apperrors.HTTPStatusError
	var payloadErr apperrors.MalformedPayloadError
	switch {
	case errors.As(err, &httpErr):
		return "http_status"
	case errors.As(err, &payloadErr):
		return "malformed_payload"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "unknown"
	}
}
