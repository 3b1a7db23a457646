package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// PortfolioService keeps every portfolio in memory and persists the full
// list through the gateway, mirroring the load-all/save-all contract.
type PortfolioService struct {
	portfolioRepo portsrepo.PortfolioRepositoryFacade
	logger        *slog.Logger

	mu         sync.RWMutex
	portfolios map[int64]*domain.Portfolio
}

// NewPortfolioService loads all persisted portfolios and returns the service.
func NewPortfolioService(ctx context.Context, portfolioRepo portsrepo.PortfolioRepositoryFacade, logger *slog.Logger) (*PortfolioService, error) {
	loaded, err := portfolioRepo.LoadPortfolios(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolios: %w", err)
	}
	portfolios := make(map[int64]*domain.Portfolio, len(loaded))
	for _, p := range loaded {
		portfolios[p.UserID] = p
	}
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		logger:        logger,
		portfolios:    portfolios,
	}, nil
}

// GetPortfolio returns the user's portfolio or UnknownUserError.
func (s *PortfolioService) GetPortfolio(userID int64) (*domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.portfolios[userID]
	if !ok {
		return nil, apperrors.UnknownUserError{UserID: userID}
	}
	return p, nil
}

// CreateForUser creates an empty portfolio for the user and persists the
// full list.
func (s *PortfolioService) CreateForUser(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.portfolios[userID]; ok {
		return nil, fmt.Errorf("%w: portfolio for user %d", apperrors.ErrDuplicate, userID)
	}
	p := domain.NewPortfolio(userID)
	s.portfolios[userID] = p
	if err := s.portfolioRepo.SavePortfolios(ctx, s.snapshotLocked()); err != nil {
		delete(s.portfolios, userID)
		return nil, fmt.Errorf("failed to save portfolios: %w", err)
	}
	return p, nil
}

// RemoveForUser drops the user's portfolio from memory without persisting.
// Used to compensate a failed registration.
func (s *PortfolioService) RemoveForUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.portfolios, userID)
}

// Persist durably saves the full portfolio list.
func (s *PortfolioService) Persist(ctx context.Context) error {
	s.mu.RLock()
	snapshot := s.snapshotLocked()
	s.mu.RUnlock()
	if err := s.portfolioRepo.SavePortfolios(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save portfolios: %w", err)
	}
	return nil
}

// TotalValue values the user's portfolio in the base currency.
func (s *PortfolioService) TotalValue(userID int64, table *domain.RateTable, baseCurrency string) (decimal.Decimal, error) {
	p, err := s.GetPortfolio(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return p.TotalValue(table, baseCurrency)
}

// snapshotLocked returns the portfolio list in stable user-ID order.
// Callers must hold at least a read lock.
func (s *PortfolioService) snapshotLocked() []*domain.Portfolio {
	out := make([]*domain.Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
