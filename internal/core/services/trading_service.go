package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portssvc "github.com/valutatrade/tradehub/internal/core/ports/services"
	"github.com/valutatrade/tradehub/internal/dto"
)

// TradingService orchestrates a buy or sell as a strict sequence: resolve
// wallet, validate amount, mutate in memory, persist, annotate with the
// market rate. A persistence failure reverses the in-memory mutation
// exactly; a rate lookup failure after the durable commit point is reported
// on the record and never rolled back.
type TradingService struct {
	portfolioService portssvc.PortfolioSvcFacade
	ratesService     portssvc.RatesSvcFacade
	logger           *slog.Logger
	baseCurrency     string

	// One lock per user keeps mutate+persist atomic with respect to
	// concurrent operations on the same portfolio.
	locksMu   sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewTradingService creates a new TradingService. baseCurrency prices
// operations whose request does not name one.
func NewTradingService(portfolioService portssvc.PortfolioSvcFacade, ratesService portssvc.RatesSvcFacade, baseCurrency string, logger *slog.Logger) *TradingService {
	return &TradingService{
		portfolioService: portfolioService,
		ratesService:     ratesService,
		logger:           logger,
		baseCurrency:     baseCurrency,
		userLocks:        map[int64]*sync.Mutex{},
	}
}

// Buy deposits into the user's wallet for the currency, creating the wallet
// on first buy.
func (s *TradingService) Buy(ctx context.Context, userID int64, req dto.TradeRequest) (*domain.OperationRecord, error) {
	return s.execute(ctx, userID, domain.OperationBuy, req)
}

// Sell withdraws from the user's wallet for the currency; the wallet must
// already exist.
func (s *TradingService) Sell(ctx context.Context, userID int64, req dto.TradeRequest) (*domain.OperationRecord, error) {
	return s.execute(ctx, userID, domain.OperationSell, req)
}

func (s *TradingService) execute(ctx context.Context, userID int64, kind domain.OperationKind, req dto.TradeRequest) (*domain.OperationRecord, error) {
	if err := domain.ValidateCurrencyCode(req.CurrencyCode); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.InvalidAmountError{Amount: req.Amount}
	}
	baseCurrency := req.BaseCurrency
	if baseCurrency == "" {
		baseCurrency = s.baseCurrency
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := s.portfolioService.GetPortfolio(userID)
	if err != nil {
		return nil, err
	}

	wallet := portfolio.GetWallet(req.CurrencyCode)
	if wallet == nil {
		if kind == domain.OperationSell {
			return nil, apperrors.UnknownWalletError{UserID: userID, CurrencyCode: req.CurrencyCode}
		}
		wallet, err = portfolio.AddCurrency(req.CurrencyCode)
		if err != nil {
			return nil, err
		}
	}

	balanceBefore := wallet.Balance
	if kind == domain.OperationBuy {
		_, err = wallet.Deposit(req.Amount)
	} else {
		_, err = wallet.Withdraw(req.Amount)
	}
	if err != nil {
		return nil, err
	}

	if err := s.portfolioService.Persist(ctx); err != nil {
		s.compensate(wallet, kind, req.Amount, balanceBefore)
		s.logOutcome(userID, kind, req, balanceBefore, wallet.Balance, "persist_failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistence, err)
	}

	record := &domain.OperationRecord{
		OperationID:   uuid.NewString(),
		UserID:        userID,
		Kind:          kind,
		CurrencyCode:  req.CurrencyCode,
		BaseCurrency:  baseCurrency,
		Amount:        req.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		ExecutedAt:    time.Now(),
	}

	// Funds moved and persisted; a rate problem from here on is an
	// annotation problem, not a reason to undo the committed state.
	rate, err := s.ratesService.Rate(baseCurrency, req.CurrencyCode)
	if err != nil {
		s.logOutcome(userID, kind, req, balanceBefore, wallet.Balance, "committed_rate_unavailable")
		return record, nil
	}
	record.Rate = rate
	record.RateAvailable = true

	s.logOutcome(userID, kind, req, balanceBefore, wallet.Balance, "committed")
	return record, nil
}

// compensate reverses the in-memory mutation exactly: a deposit is undone
// by a withdraw of the same amount and vice versa.
func (s *TradingService) compensate(wallet *domain.Wallet, kind domain.OperationKind, amount, balanceBefore decimal.Decimal) {
	var err error
	if kind == domain.OperationBuy {
		_, err = wallet.Withdraw(amount)
	} else {
		_, err = wallet.Deposit(amount)
	}
	if err != nil || !wallet.Balance.Equal(balanceBefore) {
		// Should be unreachable: the reverse of a just-applied mutation
		// cannot fail while the per-user lock is held.
		s.logger.Error("compensation did not restore wallet",
			slog.String("currency", wallet.CurrencyCode),
			slog.String("balance", wallet.Balance.String()),
			slog.String("expected", balanceBefore.String()))
	}
}

func (s *TradingService) logOutcome(userID int64, kind domain.OperationKind, req dto.TradeRequest, before, after decimal.Decimal, outcome string) {
	s.logger.Info("trade operation",
		slog.Int64("user_id", userID),
		slog.String("kind", string(kind)),
		slog.String("currency", req.CurrencyCode),
		slog.String("amount", req.Amount.String()),
		slog.String("balance_before", before.String()),
		slog.String("balance_after", after.String()),
		slog.String("outcome", outcome))
}

func (s *TradingService) userLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
