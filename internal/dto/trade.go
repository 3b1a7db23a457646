package dto

import "github.com/shopspring/decimal"

// TradeRequest defines one buy or sell intent. Amount is always positive at
// this boundary; the coordinator decides deposit vs withdraw.
type TradeRequest struct {
	CurrencyCode string          `validate:"required,uppercase,min=2,max=5,alpha"`
	Amount       decimal.Decimal `validate:"required"`
	BaseCurrency string          `validate:"omitempty,uppercase,min=2,max=5,alpha"`
}

// GetRateRequest defines a rate lookup between two currencies.
type GetRateRequest struct {
	FromCurrency string `validate:"required,uppercase,min=2,max=5,alpha"`
	ToCurrency   string `validate:"required,uppercase,min=2,max=5,alpha"`
}
