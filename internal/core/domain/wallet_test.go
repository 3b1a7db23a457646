package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

func TestWallet_Deposit(t *testing.T) {
	tests := []struct {
		name        string
		start       decimal.Decimal
		amount      decimal.Decimal
		wantBalance decimal.Decimal
		wantErr     bool
	}{
		{
			name:        "positive amount increases balance",
			start:       decimal.NewFromInt(100),
			amount:      decimal.NewFromInt(50),
			wantBalance: decimal.NewFromInt(150),
		},
		{
			name:        "zero amount rejected",
			start:       decimal.NewFromInt(100),
			amount:      decimal.Zero,
			wantBalance: decimal.NewFromInt(100),
			wantErr:     true,
		},
		{
			name:        "negative amount rejected",
			start:       decimal.NewFromInt(100),
			amount:      decimal.NewFromInt(-5),
			wantBalance: decimal.NewFromInt(100),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &domain.Wallet{CurrencyCode: "USD", Balance: tt.start}
			_, err := w.Deposit(tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				var invalidErr apperrors.InvalidAmountError
				assert.ErrorAs(t, err, &invalidErr)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, w.Balance.Equal(tt.wantBalance), "balance %s, want %s", w.Balance, tt.wantBalance)
		})
	}
}

func TestWallet_Withdraw(t *testing.T) {
	w := &domain.Wallet{CurrencyCode: "USD", Balance: decimal.NewFromInt(100)}

	newBalance, err := w.Withdraw(decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, newBalance.Equal(decimal.NewFromInt(70)))

	// Overdraft never mutates the wallet.
	_, err = w.Withdraw(decimal.NewFromInt(1000))
	require.Error(t, err)
	var insufficientErr apperrors.InsufficientFundsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.True(t, insufficientErr.Available.Equal(decimal.NewFromInt(70)))
	assert.True(t, insufficientErr.Required.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "USD", insufficientErr.CurrencyCode)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(70)))

	_, err = w.Withdraw(decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(70)))
}

func TestWallet_BalanceNeverNegative(t *testing.T) {
	w := domain.NewWallet("BTC")
	amounts := []decimal.Decimal{
		decimal.NewFromFloat(0.5),
		decimal.NewFromFloat(0.25),
		decimal.NewFromFloat(1.75),
	}
	for _, a := range amounts {
		_, err := w.Deposit(a)
		require.NoError(t, err)
	}
	_, err := w.Withdraw(decimal.NewFromFloat(2.5))
	require.NoError(t, err)
	_, err = w.Withdraw(decimal.NewFromFloat(0.01))
	require.Error(t, err, "withdrawing past zero must fail")
	assert.False(t, w.Balance.IsNegative())
}
