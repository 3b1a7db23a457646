package domain

import (
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

// Portfolio is the per-user collection of wallets, keyed by currency code.
// Exactly one portfolio exists per user; it exclusively owns its wallets.
type Portfolio struct {
	UserID  int64              `json:"userID"`
	Wallets map[string]*Wallet `json:"wallets"`
}

// NewPortfolio creates an empty portfolio for a user.
func NewPortfolio(userID int64) *Portfolio {
	return &Portfolio{UserID: userID, Wallets: map[string]*Wallet{}}
}

// AddCurrency creates a zero-balance wallet for the currency. Wallets are
// created lazily on first buy, never on sell.
func (p *Portfolio) AddCurrency(currencyCode string) (*Wallet, error) {
	if _, ok := p.Wallets[currencyCode]; ok {
		return nil, apperrors.DuplicateWalletError{UserID: p.UserID, CurrencyCode: currencyCode}
	}
	w := NewWallet(currencyCode)
	p.Wallets[currencyCode] = w
	return w, nil
}

// GetWallet returns the wallet for the currency, or nil if absent. Absence
// is a valid outcome consumed by the transaction coordinator.
func (p *Portfolio) GetWallet(currencyCode string) *Wallet {
	return p.Wallets[currencyCode]
}

// TotalValue sums every wallet balance converted to the base currency via
// the rate table. Any wallet currency without a path to base fails the
// whole valuation.
func (p *Portfolio) TotalValue(table *RateTable, baseCurrency string) (decimal.Decimal, error) {
	total := decimal.Zero
	for code, wallet := range p.Wallets {
		rate, err := table.Rate(code, baseCurrency)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(wallet.Balance.Mul(rate))
	}
	return total, nil
}
