package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

const exchangeRateAPIName = "ExchangeRateApi"

// ExchangeRateAPISource fetches fiat conversion tables from
// ExchangeRate-API. One request per configured currency; each response is
// filtered down to the currencies that follow it in the list, so every
// unordered pair is observed exactly once per cycle.
type ExchangeRateAPISource struct {
	client         *apiClient
	baseURL        string
	apiKey         string
	baseCurrency   string
	fiatCurrencies []string
}

// NewExchangeRateAPISource creates an ExchangeRate-API rate source.
func NewExchangeRateAPISource(baseURL, apiKey, baseCurrency string, fiatCurrencies []string, timeout time.Duration) *ExchangeRateAPISource {
	return &ExchangeRateAPISource{
		client:         newAPIClient(timeout),
		baseURL:        baseURL,
		apiKey:         apiKey,
		baseCurrency:   baseCurrency,
		fiatCurrencies: fiatCurrencies,
	}
}

func (s *ExchangeRateAPISource) Name() string { return exchangeRateAPIName }

// FetchObservations fetches the latest conversion table for the base
// currency and each configured fiat currency.
func (s *ExchangeRateAPISource) FetchObservations(ctx context.Context) ([]domain.RateObservation, error) {
	currencies := s.currencyList()

	var observations []domain.RateObservation
	for i, fromCurrency := range currencies {
		requestURL := fmt.Sprintf("%s/%s/latest/%s", s.baseURL, s.apiKey, fromCurrency)
		body, statusCode, etag, requestMS, err := s.client.get(ctx, requestURL)
		if err != nil {
			return nil, err
		}

		var payload struct {
			ConversionRates map[string]float64 `json:"conversion_rates"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, apperrors.MalformedPayloadError{Source: exchangeRateAPIName, Err: err}
		}
		if payload.ConversionRates == nil {
			return nil, apperrors.MalformedPayloadError{
				Source: exchangeRateAPIName,
				Err:    fmt.Errorf("response for %s has no conversion_rates", fromCurrency),
			}
		}

		now := time.Now()
		for _, toCurrency := range currencies[i+1:] {
			rate, ok := payload.ConversionRates[toCurrency]
			if !ok {
				continue
			}
			if rate <= 0 {
				return nil, apperrors.MalformedPayloadError{
					Source: exchangeRateAPIName,
					Err:    fmt.Errorf("non-positive rate %v for %s_%s", rate, fromCurrency, toCurrency),
				}
			}
			observations = append(observations, domain.RateObservation{
				FromCurrency: fromCurrency,
				ToCurrency:   toCurrency,
				Rate:         decimal.NewFromFloat(rate),
				Timestamp:    now,
				Source:       exchangeRateAPIName,
				Meta: domain.ObservationMeta{
					RawID:      toCurrency,
					RequestMS:  requestMS,
					StatusCode: statusCode,
					ETag:       etag,
				},
			})
		}
	}
	return observations, nil
}

// currencyList is the base currency followed by the configured fiats,
// deduplicated, in configured order.
func (s *ExchangeRateAPISource) currencyList() []string {
	seen := map[string]bool{s.baseCurrency: true}
	currencies := []string{s.baseCurrency}
	for _, code := range s.fiatCurrencies {
		if !seen[code] {
			seen[code] = true
			currencies = append(currencies, code)
		}
	}
	return currencies
}
