package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrPersistence indicates that a durable save or load failed.
var ErrPersistence = errors.New("persistence error")

// ErrCorruptData indicates stored data that violates a structural invariant
// (e.g. a non-positive exchange rate). Never silently worked around.
var ErrCorruptData = errors.New("corrupt data")

// InvalidAmountError is returned when an operation amount is not strictly positive.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be positive", e.Amount)
}

func (e InvalidAmountError) Unwrap() error { return ErrValidation }

// InsufficientFundsError is returned when a withdrawal exceeds the wallet balance.
// The wallet is left untouched.
type InsufficientFundsError struct {
	Available    decimal.Decimal
	Required     decimal.Decimal
	CurrencyCode string
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s",
		e.Available, e.CurrencyCode, e.Required, e.CurrencyCode)
}

// UnknownUserError is returned when no user matches the given ID or username.
type UnknownUserError struct {
	UserID   int64
	Username string
}

func (e UnknownUserError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("unknown user %q", e.Username)
	}
	return fmt.Sprintf("unknown user %d", e.UserID)
}

func (e UnknownUserError) Unwrap() error { return ErrNotFound }

// UnknownWalletError is returned when a sell targets a currency the user holds no wallet for.
type UnknownWalletError struct {
	UserID       int64
	CurrencyCode string
}

func (e UnknownWalletError) Error() string {
	return fmt.Sprintf("user %d has no wallet for currency %s", e.UserID, e.CurrencyCode)
}

func (e UnknownWalletError) Unwrap() error { return ErrNotFound }

// DuplicateWalletError is returned when adding a currency the portfolio already holds.
type DuplicateWalletError struct {
	UserID       int64
	CurrencyCode string
}

func (e DuplicateWalletError) Error() string {
	return fmt.Sprintf("user %d already has a wallet for currency %s", e.UserID, e.CurrencyCode)
}

func (e DuplicateWalletError) Unwrap() error { return ErrDuplicate }

// UnknownRateError is returned when no stored pair (in either direction)
// connects the two currencies.
type UnknownRateError struct {
	FromCurrency string
	ToCurrency   string
}

func (e UnknownRateError) Error() string {
	return fmt.Sprintf("unknown rate %s -> %s", e.FromCurrency, e.ToCurrency)
}

func (e UnknownRateError) Unwrap() error { return ErrNotFound }

// UnknownSourceError is returned when a refresh filter names an unregistered rate source.
type UnknownSourceError struct {
	Name string
}

func (e UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown rate source %q", e.Name)
}

func (e UnknownSourceError) Unwrap() error { return ErrNotFound }

// TransportError is a rate source failure before any HTTP response arrived
// (dial, timeout, connection reset).
type TransportError struct {
	URL string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// HTTPStatusError is a non-2xx response from a rate source.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// MalformedPayloadError is a 2xx response from a rate source whose body
// could not be decoded into observations.
type MalformedPayloadError struct {
	Source string
	Err    error
}

func (e MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload from %s: %v", e.Source, e.Err)
}

func (e MalformedPayloadError) Unwrap() error { return e.Err }
