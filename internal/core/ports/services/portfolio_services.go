package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// PortfolioSvcFacade defines the portfolio operations exposed to the CLI
// and to the transaction coordinator.
type PortfolioSvcFacade interface {
	// GetPortfolio returns the user's portfolio or UnknownUserError.
	GetPortfolio(userID int64) (*domain.Portfolio, error)

	// CreateForUser creates the user's empty portfolio and persists the
	// full list.
	CreateForUser(ctx context.Context, userID int64) (*domain.Portfolio, error)

	// RemoveForUser drops the user's portfolio from memory without
	// persisting; used to compensate a failed registration.
	RemoveForUser(userID int64)

	// Persist durably saves the full portfolio list.
	Persist(ctx context.Context) error

	// TotalValue values the user's portfolio in the base currency using
	// the given rate table.
	TotalValue(userID int64, table *domain.RateTable, baseCurrency string) (decimal.Decimal, error)
}
