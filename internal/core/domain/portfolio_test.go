package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

func TestPortfolio_AddCurrency(t *testing.T) {
	p := domain.NewPortfolio(1)

	w, err := p.AddCurrency("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", w.CurrencyCode)
	assert.True(t, w.Balance.IsZero())

	_, err = p.AddCurrency("EUR")
	require.Error(t, err)
	var dupErr apperrors.DuplicateWalletError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, int64(1), dupErr.UserID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestPortfolio_GetWallet(t *testing.T) {
	p := domain.NewPortfolio(1)
	assert.Nil(t, p.GetWallet("USD"), "absence is a valid outcome, not an error")

	_, err := p.AddCurrency("USD")
	require.NoError(t, err)
	assert.NotNil(t, p.GetWallet("USD"))
}

func TestPortfolio_TotalValue(t *testing.T) {
	p := domain.NewPortfolio(1)
	usd, err := p.AddCurrency("USD")
	require.NoError(t, err)
	_, err = usd.Deposit(decimal.NewFromInt(100))
	require.NoError(t, err)
	eur, err := p.AddCurrency("EUR")
	require.NoError(t, err)
	_, err = eur.Deposit(decimal.NewFromInt(10))
	require.NoError(t, err)

	table := tableWith(t, map[string]float64{"EUR_USD": 1.25})

	total, err := p.TotalValue(table, "USD")
	require.NoError(t, err)
	// 100 USD + 10 EUR * 1.25
	assert.True(t, total.Equal(decimal.NewFromFloat(112.5)), "got %s", total)
}

func TestPortfolio_TotalValuePropagatesUnknownRate(t *testing.T) {
	p := domain.NewPortfolio(1)
	btc, err := p.AddCurrency("BTC")
	require.NoError(t, err)
	_, err = btc.Deposit(decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = p.TotalValue(domain.EmptyRateTable(), "USD")
	require.Error(t, err)
	var unknownErr apperrors.UnknownRateError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestValidateCurrencyCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"USD", false},
		{"BTC", false},
		{"DOGE", false},
		{"EU", false},
		{"USDTX", false},
		{"usd", true},
		{"U", true},
		{"TOOLONG", true},
		{"US1", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := domain.ValidateCurrencyCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
