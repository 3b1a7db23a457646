package domain

import (
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

// Wallet holds a single-currency balance inside a Portfolio. The balance is
// never negative after a completed operation; a mutation that would make it
// negative is rejected before being applied.
type Wallet struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// NewWallet creates a zero-balance wallet for the given currency.
func NewWallet(currencyCode string) *Wallet {
	return &Wallet{CurrencyCode: currencyCode, Balance: decimal.Zero}
}

// Deposit increases the balance and returns the new balance.
func (w *Wallet) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return w.Balance, apperrors.InvalidAmountError{Amount: amount}
	}
	w.Balance = w.Balance.Add(amount)
	return w.Balance, nil
}

// Withdraw decreases the balance and returns the new balance. The wallet is
// untouched if the amount is invalid or exceeds the balance.
func (w *Wallet) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return w.Balance, apperrors.InvalidAmountError{Amount: amount}
	}
	if amount.GreaterThan(w.Balance) {
		return w.Balance, apperrors.InsufficientFundsError{
			Available:    w.Balance,
			Required:     amount,
			CurrencyCode: w.CurrencyCode,
		}
	}
	w.Balance = w.Balance.Sub(amount)
	return w.Balance, nil
}
