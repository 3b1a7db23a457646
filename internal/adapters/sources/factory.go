package sources

import (
	"github.com/valutatrade/tradehub/internal/core/ports"
	"github.com/valutatrade/tradehub/internal/platform/config"
)

// Build constructs the configured rate sources. The ExchangeRate-API source
// is only registered when an API key is configured.
func Build(cfg *config.Config) []ports.RateSource {
	built := []ports.RateSource{
		NewCoinGeckoSource(cfg.CoinGeckoURL, cfg.BaseCurrency, cfg.CryptoCurrencies, cfg.RequestTimeout),
	}
	if cfg.ExchangeRateAPIKey != "" {
		built = append(built, NewExchangeRateAPISource(
			cfg.ExchangeRateAPIURL,
			cfg.ExchangeRateAPIKey,
			cfg.BaseCurrency,
			cfg.FiatCurrencies,
			cfg.RequestTimeout,
		))
	}
	return built
}
