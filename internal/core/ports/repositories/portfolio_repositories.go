package repositories

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// PortfolioReader defines read operations for portfolio data.
type PortfolioReader interface {
	// LoadPortfolios retrieves every persisted portfolio with its wallets.
	LoadPortfolios(ctx context.Context) ([]*domain.Portfolio, error)
}

// PortfolioWriter defines write operations for portfolio data.
type PortfolioWriter interface {
	// SavePortfolios durably persists the full portfolio list.
	SavePortfolios(ctx context.Context, portfolios []*domain.Portfolio) error
}

// PortfolioRepositoryFacade combines all portfolio-related repository interfaces.
type PortfolioRepositoryFacade interface {
	PortfolioReader
	PortfolioWriter
}
