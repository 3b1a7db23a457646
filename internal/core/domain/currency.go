package domain

import (
	"fmt"
	"regexp"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

// Currency codes are 2-5 uppercase letters (fiat ISO codes plus short crypto
// tickers such as BTC, DOGE).
var currencyCodePattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// ValidateCurrencyCode checks the canonical currency code format.
func ValidateCurrencyCode(code string) error {
	if !currencyCodePattern.MatchString(code) {
		return fmt.Errorf("%w: currency code %q must be 2-5 uppercase letters", apperrors.ErrValidation, code)
	}
	return nil
}
