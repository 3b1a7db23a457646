package jsonfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

func newTestRatesStore(t *testing.T) *RatesStore {
	t.Helper()
	dir := t.TempDir()
	return NewRatesStore(filepath.Join(dir, "snapshot.json"), filepath.Join(dir, "history.json"))
}

func TestRatesStore_MissingSnapshotYieldsEmptyTable(t *testing.T) {
	store := newTestRatesStore(t)

	table, err := store.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.LastRefresh().IsZero())
}

func TestRatesStore_SnapshotRoundTrip(t *testing.T) {
	store := newTestRatesStore(t)
	ctx := context.Background()

	updatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lastRefresh := updatedAt.Add(time.Minute)
	saved := domain.NewRateTable(map[string]domain.Rate{
		"USD_EUR": {Rate: decimal.NewFromFloat(0.9), UpdatedAt: updatedAt, Source: "ExchangeRateApi"},
		"USD_BTC": {Rate: decimal.NewFromFloat(0.00002), UpdatedAt: updatedAt, Source: "CoinGecko"},
	}, lastRefresh)

	require.NoError(t, store.SaveSnapshot(ctx, saved))

	loaded, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.True(t, loaded.LastRefresh().Equal(lastRefresh))

	pairs := loaded.Pairs()
	assert.True(t, pairs["USD_EUR"].Rate.Equal(decimal.NewFromFloat(0.9)))
	assert.Equal(t, "CoinGecko", pairs["USD_BTC"].Source)
	assert.True(t, pairs["USD_BTC"].UpdatedAt.Equal(updatedAt))
}

func TestRatesStore_MissingHistoryYieldsEmptyList(t *testing.T) {
	store := newTestRatesStore(t)

	history, err := store.LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRatesStore_HistoryRoundTrip(t *testing.T) {
	store := newTestRatesStore(t)
	ctx := context.Background()

	timestamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	saved := []domain.RateObservation{
		{
			FromCurrency: "USD",
			ToCurrency:   "BTC",
			Rate:         decimal.NewFromFloat(0.00002),
			Timestamp:    timestamp,
			Source:       "CoinGecko",
			Meta:         domain.ObservationMeta{RawID: "bitcoin", RequestMS: 120, StatusCode: 200, ETag: `"abc"`},
		},
		{
			FromCurrency: "USD",
			ToCurrency:   "EUR",
			Rate:         decimal.NewFromFloat(0.9),
			Timestamp:    timestamp.Add(time.Second),
			Source:       "ExchangeRateApi",
			Meta:         domain.ObservationMeta{RawID: "EUR", RequestMS: 80, StatusCode: 200},
		},
	}
	require.NoError(t, store.SaveHistory(ctx, saved))

	loaded, err := store.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "USD", loaded[0].FromCurrency)
	assert.Equal(t, "BTC", loaded[0].ToCurrency)
	assert.True(t, loaded[0].Rate.Equal(decimal.NewFromFloat(0.00002)))
	assert.Equal(t, saved[0].Meta, loaded[0].Meta)
	// IDs are derived from the fields, so they match the originals.
	assert.Equal(t, saved[0].ID(), loaded[0].ID())
	assert.Equal(t, saved[1].ID(), loaded[1].ID())
}
