package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

const coinGeckoName = "CoinGecko"

// CoinGeckoSource fetches crypto prices from the CoinGecko simple-price
// endpoint. Prices arrive as crypto priced in the base currency; the
// observation is stored base -> crypto, so the reciprocal is taken here.
type CoinGeckoSource struct {
	client       *apiClient
	baseURL      string
	baseCurrency string
	// CoinGecko asset id -> currency code, e.g. "bitcoin" -> "BTC".
	cryptoCurrencies map[string]string
}

// NewCoinGeckoSource creates a CoinGecko rate source.
func NewCoinGeckoSource(baseURL, baseCurrency string, cryptoCurrencies map[string]string, timeout time.Duration) *CoinGeckoSource {
	return &CoinGeckoSource{
		client:           newAPIClient(timeout),
		baseURL:          baseURL,
		baseCurrency:     baseCurrency,
		cryptoCurrencies: cryptoCurrencies,
	}
}

func (s *CoinGeckoSource) Name() string { return coinGeckoName }

// FetchObservations fetches one price per configured crypto asset.
func (s *CoinGeckoSource) FetchObservations(ctx context.Context) ([]domain.RateObservation, error) {
	ids := make([]string, 0, len(s.cryptoCurrencies))
	for id := range s.cryptoCurrencies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.ToLower(s.baseCurrency))
	requestURL := s.baseURL + "?" + query.Encode()

	body, statusCode, etag, requestMS, err := s.client.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperrors.MalformedPayloadError{Source: coinGeckoName, Err: err}
	}

	now := time.Now()
	observations := make([]domain.RateObservation, 0, len(payload))
	for _, id := range ids {
		prices, ok := payload[id]
		if !ok {
			continue
		}
		price, ok := prices[strings.ToLower(s.baseCurrency)]
		if !ok {
			return nil, apperrors.MalformedPayloadError{
				Source: coinGeckoName,
				Err:    fmt.Errorf("no %s price for asset %q", s.baseCurrency, id),
			}
		}
		if price <= 0 {
			return nil, apperrors.MalformedPayloadError{
				Source: coinGeckoName,
				Err:    fmt.Errorf("non-positive price %v for asset %q", price, id),
			}
		}
		observations = append(observations, domain.RateObservation{
			FromCurrency: s.baseCurrency,
			ToCurrency:   s.cryptoCurrencies[id],
			Rate:         decimal.NewFromInt(1).Div(decimal.NewFromFloat(price)),
			Timestamp:    now,
			Source:       coinGeckoName,
			Meta: domain.ObservationMeta{
				RawID:      id,
				RequestMS:  requestMS,
				StatusCode: statusCode,
				ETag:       etag,
			},
		})
	}
	return observations, nil
}
