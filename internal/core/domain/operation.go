package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationKind indicates the direction of a trade.
type OperationKind string

const (
	OperationBuy  OperationKind = "BUY"
	OperationSell OperationKind = "SELL"
)

// OperationRecord captures one buy/sell intent and its resolved outcome.
// Ephemeral: rendered to the user and logged, never persisted. It is also
// the unit the coordinator's compensation logic operates on.
type OperationRecord struct {
	OperationID   string
	UserID        int64
	Kind          OperationKind
	CurrencyCode  string
	BaseCurrency  string
	Amount        decimal.Decimal
	Rate          decimal.Decimal // base -> currency; zero when unavailable
	RateAvailable bool
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ExecutedAt    time.Time
}
