package services

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/dto"
)

// TradingSvcFacade defines the buy/sell orchestration exposed to the CLI.
// Amounts are always positive at this boundary; direction is decided by
// which wallet operation the coordinator invokes.
type TradingSvcFacade interface {
	// Buy deposits into the user's wallet for the currency, creating the
	// wallet on first buy.
	Buy(ctx context.Context, userID int64, req dto.TradeRequest) (*domain.OperationRecord, error)

	// Sell withdraws from the user's wallet for the currency; the wallet
	// must already exist.
	Sell(ctx context.Context, userID int64, req dto.TradeRequest) (*domain.OperationRecord, error)
}
