package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is the latest accepted value for one directed currency pair.
// Immutable; a newer observation replaces the map entry, never mutates it.
type Rate struct {
	Rate      decimal.Decimal
	UpdatedAt time.Time
	Source    string
}

// ObservationMeta carries provenance for one fetched reading.
type ObservationMeta struct {
	RawID      string
	RequestMS  int64
	StatusCode int
	ETag       string
}

// RateObservation is one timestamped rate reading from one external source.
// Immutable once created; appended to a bounded per-source history ring.
type RateObservation struct {
	FromCurrency string
	ToCurrency   string
	Rate         decimal.Decimal
	Timestamp    time.Time
	Source       string
	Meta         ObservationMeta
}

// ID derives the observation identity; it is reconstructed on reload, not
// stored redundantly.
func (o RateObservation) ID() string {
	return fmt.Sprintf("%s_%s_%s", o.FromCurrency, o.ToCurrency, o.Timestamp.Format(time.RFC3339Nano))
}

// PairKey builds the canonical FROM_TO key for a directed pair.
func PairKey(fromCurrency, toCurrency string) string {
	return fromCurrency + "_" + toCurrency
}

// ParsePairKey splits a canonical FROM_TO key.
func ParsePairKey(key string) (fromCurrency, toCurrency string, err error) {
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid pair key %q", key)
	}
	return parts[0], parts[1], nil
}
