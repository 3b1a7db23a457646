package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// PortfolioRepository is the Postgres persistence gateway for portfolios.
// Wallets live in their own table keyed by (user_id, currency_code);
// SavePortfolios replaces the full wallet set in one transaction.
type PortfolioRepository struct {
	db *pgxpool.Pool
}

func NewPortfolioRepository(db *pgxpool.Pool) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

var _ portsrepo.PortfolioRepositoryFacade = (*PortfolioRepository)(nil)

func (r *PortfolioRepository) LoadPortfolios(ctx context.Context) ([]*domain.Portfolio, error) {
	query := `
        SELECT user_id, currency_code, balance
        FROM wallets
        ORDER BY user_id, currency_code;
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query wallets: %v", apperrors.ErrPersistence, err)
	}
	defer rows.Close()

	byUser := map[int64]*domain.Portfolio{}
	order := []int64{}
	for rows.Next() {
		var userID int64
		var currencyCode string
		var balance decimal.Decimal
		if err := rows.Scan(&userID, &currencyCode, &balance); err != nil {
			return nil, fmt.Errorf("%w: failed to scan wallet row: %v", apperrors.ErrPersistence, err)
		}
		p, ok := byUser[userID]
		if !ok {
			p = domain.NewPortfolio(userID)
			byUser[userID] = p
			order = append(order, userID)
		}
		p.Wallets[currencyCode] = &domain.Wallet{CurrencyCode: currencyCode, Balance: balance}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read wallets: %v", apperrors.ErrPersistence, err)
	}

	portfolios := make([]*domain.Portfolio, 0, len(order))
	for _, userID := range order {
		portfolios = append(portfolios, byUser[userID])
	}
	return portfolios, nil
}

func (r *PortfolioRepository) SavePortfolios(ctx context.Context, portfolios []*domain.Portfolio) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", apperrors.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wallets;`); err != nil {
		return fmt.Errorf("%w: failed to clear wallets: %v", apperrors.ErrPersistence, err)
	}

	insert := `
        INSERT INTO wallets (user_id, currency_code, balance)
        VALUES ($1, $2, $3);
    `
	for _, p := range portfolios {
		for code, wallet := range p.Wallets {
			if _, err := tx.Exec(ctx, insert, p.UserID, code, wallet.Balance); err != nil {
				return fmt.Errorf("%w: failed to insert wallet %d/%s: %v", apperrors.ErrPersistence, p.UserID, code, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit wallets: %v", apperrors.ErrPersistence, err)
	}
	return nil
}
