package services

import (
	"context"
	"log/slog"

	"github.com/valutatrade/tradehub/internal/core/ports"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/platform/config"
)

// Container holds all the services and manages their dependencies.
type Container struct {
	User      portssvc.UserSvcFacade
	Portfolio portssvc.PortfolioSvcFacade
	Rates     portssvc.RatesSvcFacade
	Trading   portssvc.TradingSvcFacade
}

// NewContainer creates a new service container with properly initialized
// dependencies. Portfolio and rates state is loaded from the gateways here,
// so construction can fail on unreadable data.
func NewContainer(ctx context.Context, cfg *config.Config, repos *portsrepo.RepositoryProvider, sources []ports.RateSource, logger *slog.Logger) (*Container, error) {
	container := &Container{}

	portfolioService, err := NewPortfolioService(ctx, repos.PortfolioRepo, logger)
	if err != nil {
		return nil, err
	}
	container.Portfolio = portfolioService

	userService, err := NewUserService(ctx, repos.UserRepo, container.Portfolio, cfg.MinPasswordLength, logger)
	if err != nil {
		return nil, err
	}
	container.User = userService

	ratesService, err := NewRatesService(ctx, repos.RatesRepo, sources, cfg.MaxHistoryLen, logger)
	if err != nil {
		return nil, err
	}
	container.Rates = ratesService

	container.Trading = NewTradingService(container.Portfolio, container.Rates, cfg.BaseCurrency, logger)

	return container, nil
}

// Compile-time interface checks.
var (
	_ portssvc.UserSvcFacade      = (*UserService)(nil)
	_ portssvc.PortfolioSvcFacade = (*PortfolioService)(nil)
	_ portssvc.RatesSvcFacade     = (*RatesService)(nil)
	_ portssvc.TradingSvcFacade   = (*TradingService)(nil)
)
