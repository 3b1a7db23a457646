package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valutatrade/tradehub/internal/adapters/sources"
	"github.com/valutatrade/tradehub/internal/apperrors"
)

func exchangeRateHandler(t *testing.T, tables map[string]map[string]float64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if !assert.Len(t, parts, 3, "expected /<key>/latest/<currency>") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "test-key", parts[0])
		assert.Equal(t, "latest", parts[1])

		table, ok := tables[parts[2]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		entries := make([]string, 0, len(table))
		for code, rate := range table {
			entries = append(entries, fmt.Sprintf("%q:%v", code, rate))
		}
		fmt.Fprintf(w, `{"result":"success","conversion_rates":{%s}}`, strings.Join(entries, ","))
	}
}

func TestExchangeRateAPI_FetchObservations(t *testing.T) {
	server := httptest.NewServer(exchangeRateHandler(t, map[string]map[string]float64{
		"USD": {"USD": 1, "EUR": 0.9, "GBP": 0.8},
		"EUR": {"USD": 1.11, "EUR": 1, "GBP": 0.88},
		"GBP": {"USD": 1.25, "EUR": 1.13, "GBP": 1},
	}))
	defer server.Close()

	src := sources.NewExchangeRateAPISource(server.URL, "test-key", "USD", []string{"EUR", "GBP"}, time.Second)
	require.Equal(t, "ExchangeRateApi", src.Name())

	observations, err := src.FetchObservations(context.Background())
	require.NoError(t, err)

	// Each unordered pair exactly once: USD_EUR, USD_GBP, EUR_GBP.
	require.Len(t, observations, 3)
	pairs := make(map[string]decimal.Decimal, len(observations))
	for _, obs := range observations {
		pairs[obs.FromCurrency+"_"+obs.ToCurrency] = obs.Rate
	}
	require.Len(t, pairs, 3)
	assert.True(t, pairs["USD_EUR"].Equal(decimal.NewFromFloat(0.9)))
	assert.True(t, pairs["USD_GBP"].Equal(decimal.NewFromFloat(0.8)))
	assert.True(t, pairs["EUR_GBP"].Equal(decimal.NewFromFloat(0.88)))
	// Identity and reverse pairs from the responses are never emitted.
	_, ok := pairs["USD_USD"]
	assert.False(t, ok)
	_, ok = pairs["EUR_USD"]
	assert.False(t, ok)
}

func TestExchangeRateAPI_DeduplicatesBaseFromFiats(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"conversion_rates":{"EUR":0.9}}`))
	}))
	defer server.Close()

	// USD configured both as base and in the fiat list.
	src := sources.NewExchangeRateAPISource(server.URL, "test-key", "USD", []string{"USD", "EUR"}, time.Second)
	_, err := src.FetchObservations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, requests, "one request per distinct currency")
}

func TestExchangeRateAPI_MissingConversionRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","error-type":"invalid-key"}`))
	}))
	defer server.Close()

	src := sources.NewExchangeRateAPISource(server.URL, "test-key", "USD", []string{"EUR"}, time.Second)
	_, err := src.FetchObservations(context.Background())
	require.Error(t, err)
	var malformedErr apperrors.MalformedPayloadError
	require.ErrorAs(t, err, &malformedErr)
	assert.Equal(t, "ExchangeRateApi", malformedErr.Source)
}

func TestExchangeRateAPI_NonPositiveRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"conversion_rates":{"EUR":-0.9}}`))
	}))
	defer server.Close()

	src := sources.NewExchangeRateAPISource(server.URL, "test-key", "USD", []string{"EUR"}, time.Second)
	_, err := src.FetchObservations(context.Background())
	require.Error(t, err)
	var malformedErr apperrors.MalformedPayloadError
	assert.ErrorAs(t, err, &malformedErr)
}

func TestExchangeRateAPI_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	src := sources.NewExchangeRateAPISource(server.URL, "test-key", "USD", []string{"EUR"}, time.Second)
	_, err := src.FetchObservations(context.Background())
	require.Error(t, err)
	var statusErr apperrors.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}
