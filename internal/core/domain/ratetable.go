package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
)

var one = decimal.NewFromInt(1)

// RateTable is an immutable snapshot of the latest rate per directed pair.
// Only one direction is stored; the inverse is computed on lookup. The
// aggregator builds a fresh table each refresh and swaps the reference, so
// readers never observe a half-merged table.
type RateTable struct {
	pairs       map[string]Rate
	lastRefresh time.Time
}

// NewRateTable builds a table from a pair map. The map is copied; callers
// may keep mutating their copy without affecting the table.
func NewRateTable(pairs map[string]Rate, lastRefresh time.Time) *RateTable {
	copied := make(map[string]Rate, len(pairs))
	for k, v := range pairs {
		copied[k] = v
	}
	return &RateTable{pairs: copied, lastRefresh: lastRefresh}
}

// EmptyRateTable returns a table with no pairs and a zero refresh time.
func EmptyRateTable() *RateTable {
	return &RateTable{pairs: map[string]Rate{}}
}

// LastRefresh is the single timestamp for the whole table, set once per
// aggregation cycle.
func (t *RateTable) LastRefresh() time.Time { return t.lastRefresh }

// Len reports the number of stored directed pairs.
func (t *RateTable) Len() int { return len(t.pairs) }

// Pairs returns a copy of the stored pair map.
func (t *RateTable) Pairs() map[string]Rate {
	copied := make(map[string]Rate, len(t.pairs))
	for k, v := range t.pairs {
		copied[k] = v
	}
	return copied
}

// Rate returns the exchange rate from one currency to another. Identity
// pairs are always 1. If the directed pair is absent the inverse direction
// is consulted and its reciprocal returned.
func (t *RateTable) Rate(fromCurrency, toCurrency string) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return one, nil
	}
	if r, ok := t.pairs[PairKey(fromCurrency, toCurrency)]; ok {
		if r.Rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, t.corrupt(fromCurrency, toCurrency, r.Rate)
		}
		return r.Rate, nil
	}
	if r, ok := t.pairs[PairKey(toCurrency, fromCurrency)]; ok {
		if r.Rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, t.corrupt(toCurrency, fromCurrency, r.Rate)
		}
		return one.Div(r.Rate), nil
	}
	return decimal.Zero, apperrors.UnknownRateError{FromCurrency: fromCurrency, ToCurrency: toCurrency}
}

// RatesRelativeTo returns the rate from base to every currency it shares a
// stored pair with. Pairs not touching base are omitted; callers must not
// assume completeness.
func (t *RateTable) RatesRelativeTo(baseCurrency string) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for key, r := range t.pairs {
		fc, tc, err := ParsePairKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptData, err)
		}
		switch baseCurrency {
		case fc:
			if r.Rate.LessThanOrEqual(decimal.Zero) {
				return nil, t.corrupt(fc, tc, r.Rate)
			}
			rates[tc] = r.Rate
		case tc:
			if r.Rate.LessThanOrEqual(decimal.Zero) {
				return nil, t.corrupt(fc, tc, r.Rate)
			}
			rates[fc] = one.Div(r.Rate)
		}
	}
	return rates, nil
}

// RankedRate is one TopN entry. The pair label always reflects the direction
// whose rate is >= 1.
type RankedRate struct {
	Pair string
	Rate decimal.Decimal
}

// TopN ranks pairs by descending rate, normalizing each pair so the reported
// rate is at least 1 (pairs stored below 1 are inverted and relabeled).
func (t *RateTable) TopN(n int) ([]RankedRate, error) {
	ranked := make([]RankedRate, 0, len(t.pairs))
	for key, r := range t.pairs {
		fc, tc, err := ParsePairKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCorruptData, err)
		}
		if r.Rate.LessThanOrEqual(decimal.Zero) {
			return nil, t.corrupt(fc, tc, r.Rate)
		}
		entry := RankedRate{Pair: key, Rate: r.Rate}
		if r.Rate.LessThan(one) {
			entry = RankedRate{Pair: PairKey(tc, fc), Rate: one.Div(r.Rate)}
		}
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Rate.GreaterThan(ranked[j].Rate)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (t *RateTable) corrupt(fromCurrency, toCurrency string, rate decimal.Decimal) error {
	return fmt.Errorf("%w: stored rate %s_%s is %s", apperrors.ErrCorruptData,
		fromCurrency, toCurrency, rate)
}
