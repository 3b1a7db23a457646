package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	"github.com/valutatrade/tradehub/internal/core/services"
	"github.com/valutatrade/tradehub/internal/dto"
)

// Runner is the interactive command loop: parse, dispatch to the service
// container, render. All business logic lives below it.
type Runner struct {
	container    *services.Container
	validate     *validator.Validate
	logger       *slog.Logger
	baseCurrency string

	in  io.Reader
	out io.Writer

	currentUser *domain.User
}

// NewRunner creates a CLI runner bound to the service container.
func NewRunner(container *services.Container, baseCurrency string, in io.Reader, out io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		container:    container,
		validate:     validator.New(),
		logger:       logger,
		baseCurrency: baseCurrency,
		in:           in,
		out:          out,
	}
}

// Run reads commands until exit or EOF. Command failures are printed and
// the loop continues; only an unreadable input stream ends it.
func (r *Runner) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "ValutaTrade Hub. Type 'help' for commands.")
	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, command string, rest []string) error {
	args, err := parseArgs(rest)
	if err != nil {
		return err
	}
	switch command {
	case "help":
		r.printHelp()
		return nil
	case "register":
		return r.register(ctx, args)
	case "login":
		return r.login(ctx, args)
	case "change_password":
		return r.changePassword(ctx, args)
	case "buy":
		return r.trade(ctx, domain.OperationBuy, args)
	case "sell":
		return r.trade(ctx, domain.OperationSell, args)
	case "show_portfolio":
		return r.showPortfolio(args)
	case "get_rate":
		return r.getRate(args)
	case "update_rates":
		return r.updateRates(ctx, args)
	case "top":
		return r.top(args)
	default:
		return fmt.Errorf("%w: unknown command %q", apperrors.ErrValidation, command)
	}
}

func (r *Runner) register(ctx context.Context, args map[string]string) error {
	req := dto.RegisterRequest{Username: args["username"], Password: args["password"]}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	user, err := r.container.User.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "registered user %q with id %d\n", user.Username, user.UserID)
	return nil
}

func (r *Runner) login(ctx context.Context, args map[string]string) error {
	req := dto.LoginRequest{Username: args["username"], Password: args["password"]}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	user, err := r.container.User.Authenticate(ctx, req)
	if err != nil {
		return err
	}
	r.currentUser = user
	fmt.Fprintf(r.out, "logged in as %q (id %d)\n", user.Username, user.UserID)
	return nil
}

func (r *Runner) changePassword(ctx context.Context, args map[string]string) error {
	user, err := r.requireLogin()
	if err != nil {
		return err
	}
	req := dto.ChangePasswordRequest{NewPassword: args["password"]}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := r.container.User.ChangePassword(ctx, user.UserID, req); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "password changed")
	return nil
}

func (r *Runner) trade(ctx context.Context, kind domain.OperationKind, args map[string]string) error {
	user, err := r.requireLogin()
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args["amount"])
	if err != nil {
		return fmt.Errorf("%w: bad amount %q", apperrors.ErrValidation, args["amount"])
	}
	req := dto.TradeRequest{
		CurrencyCode: args["currency"],
		Amount:       amount,
		BaseCurrency: args["base"],
	}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	var record *domain.OperationRecord
	if kind == domain.OperationBuy {
		record, err = r.container.Trading.Buy(ctx, user.UserID, req)
	} else {
		record, err = r.container.Trading.Sell(ctx, user.UserID, req)
	}
	if err != nil {
		return err
	}

	rate := "unavailable"
	if record.RateAvailable {
		rate = record.Rate.String()
	}
	fmt.Fprintf(r.out, "%s %s %s: balance %s -> %s (rate %s -> %s: %s)\n",
		strings.ToLower(string(record.Kind)), record.Amount, record.CurrencyCode,
		record.BalanceBefore, record.BalanceAfter,
		record.BaseCurrency, record.CurrencyCode, rate)
	return nil
}

func (r *Runner) showPortfolio(args map[string]string) error {
	user, err := r.requireLogin()
	if err != nil {
		return err
	}
	baseCurrency := args["base"]
	if baseCurrency == "" {
		baseCurrency = r.baseCurrency
	}
	portfolio, err := r.container.Portfolio.GetPortfolio(user.UserID)
	if err != nil {
		return err
	}
	for code, wallet := range portfolio.Wallets {
		fmt.Fprintf(r.out, "  %s: %s\n", code, wallet.Balance)
	}
	total, err := r.container.Portfolio.TotalValue(user.UserID, r.container.Rates.Current(), baseCurrency)
	if err != nil {
		return fmt.Errorf("cannot value portfolio in %s: %w", baseCurrency, err)
	}
	fmt.Fprintf(r.out, "total: %s %s\n", total, baseCurrency)
	return nil
}

func (r *Runner) getRate(args map[string]string) error {
	req := dto.GetRateRequest{FromCurrency: args["from"], ToCurrency: args["to"]}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	rate, err := r.container.Rates.Rate(req.FromCurrency, req.ToCurrency)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s -> %s: %s (as of %s)\n",
		req.FromCurrency, req.ToCurrency, rate,
		r.container.Rates.Current().LastRefresh().Format("2006-01-02 15:04:05"))
	return nil
}

func (r *Runner) updateRates(ctx context.Context, args map[string]string) error {
	table, failures, err := r.container.Rates.Refresh(ctx, args["source"])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "refreshed: %d pairs known, %d source failures\n", table.Len(), failures)
	return nil
}

func (r *Runner) top(args map[string]string) error {
	n := 5
	if raw, ok := args["n"]; ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("%w: bad count %q", apperrors.ErrValidation, raw)
		}
		n = parsed
	}
	ranked, err := r.container.Rates.TopN(n)
	if err != nil {
		return err
	}
	for i, entry := range ranked {
		fmt.Fprintf(r.out, "%2d. %s %s\n", i+1, entry.Pair, entry.Rate)
	}
	return nil
}

func (r *Runner) requireLogin() (*domain.User, error) {
	if r.currentUser == nil {
		return nil, fmt.Errorf("%w: not logged in", apperrors.ErrValidation)
	}
	return r.currentUser, nil
}

func (r *Runner) printHelp() {
	fmt.Fprint(r.out, `commands:
  register --username NAME --password PASS
  login --username NAME --password PASS
  change_password --password PASS
  buy --currency CODE --amount N [--base CODE]
  sell --currency CODE --amount N [--base CODE]
  show_portfolio [--base CODE]
  get_rate --from CODE --to CODE
  update_rates [--source NAME]
  top [--n N]
  exit
`)
}
