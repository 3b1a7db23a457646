package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RatesSvcFacade defines the rate aggregation operations exposed to the CLI
// and to the transaction coordinator.
type RatesSvcFacade interface {
	// Refresh fetches from every registered source (or the one named by
	// sourceFilter), merges into a new table snapshot and swaps it in.
	// failures counts sources that errored; per-source failures never
	// abort the cycle.
	Refresh(ctx context.Context, sourceFilter string) (*domain.RateTable, int, error)

	// Current returns the table snapshot readers should consult.
	Current() *domain.RateTable

	// Rate looks up a rate in the current snapshot.
	Rate(fromCurrency, toCurrency string) (decimal.Decimal, error)

	// TopN ranks the current snapshot's pairs, strongest direction first.
	TopN(n int) ([]domain.RankedRate, error)
}
