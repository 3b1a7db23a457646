package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	BackendJSONFile = "json"
	BackendPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Persistence
	StorageBackend string
	DataDir        string
	UsersFile      string
	PortfoliosFile string
	SnapshotFile   string
	HistoryFile    string
	DatabaseURL    string

	// Rates
	BaseCurrency       string
	RequestTimeout     time.Duration
	RefreshInterval    time.Duration // 0 disables the background refresh
	MaxHistoryLen      int
	CoinGeckoURL       string
	ExchangeRateAPIURL string
	ExchangeRateAPIKey string
	CryptoCurrencies   map[string]string // CoinGecko id -> currency code
	FiatCurrencies     []string

	// Users
	MinPasswordLength int
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("STORAGE_BACKEND", BackendJSONFile)
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("USERS_FILE", "users.json")
	viper.SetDefault("PORTFOLIOS_FILE", "portfolios.json")
	viper.SetDefault("RATES_SNAPSHOT_FILE", "rates.json")
	viper.SetDefault("RATES_HISTORY_FILE", "exchange_rates.json")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("BASE_CURRENCY", "USD")
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("REFRESH_INTERVAL", "0")
	viper.SetDefault("MAX_HISTORY_LEN", 1000)
	viper.SetDefault("COINGECKO_URL", "https://api.coingecko.com/api/v3/simple/price")
	viper.SetDefault("EXCHANGERATE_API_URL", "https://v6.exchangerate-api.com/v6")
	viper.SetDefault("EXCHANGERATE_API_KEY", "")
	viper.SetDefault("CRYPTO_CURRENCIES", map[string]string{
		"bitcoin":  "BTC",
		"ethereum": "ETH",
	})
	viper.SetDefault("FIAT_CURRENCIES", []string{"EUR", "GBP", "RUB", "JPY"})
	viper.SetDefault("MIN_PASSWORD_LENGTH", 4)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageBackend = viper.GetString("STORAGE_BACKEND")
	if cfg.StorageBackend != BackendJSONFile && cfg.StorageBackend != BackendPostgres {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q",
			cfg.StorageBackend, BackendJSONFile, BackendPostgres)
	}

	cfg.DataDir = viper.GetString("DATA_DIR")
	cfg.UsersFile = filepath.Join(cfg.DataDir, viper.GetString("USERS_FILE"))
	cfg.PortfoliosFile = filepath.Join(cfg.DataDir, viper.GetString("PORTFOLIOS_FILE"))
	cfg.SnapshotFile = filepath.Join(cfg.DataDir, viper.GetString("RATES_SNAPSHOT_FILE"))
	cfg.HistoryFile = filepath.Join(cfg.DataDir, viper.GetString("RATES_HISTORY_FILE"))

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.StorageBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("PGSQL_URL must be set when STORAGE_BACKEND is %q", BackendPostgres)
	}

	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")

	requestTimeout, err := time.ParseDuration(viper.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	cfg.RequestTimeout = requestTimeout

	refreshInterval, err := time.ParseDuration(viper.GetString("REFRESH_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = refreshInterval

	cfg.MaxHistoryLen = viper.GetInt("MAX_HISTORY_LEN")
	if cfg.MaxHistoryLen <= 0 {
		return nil, fmt.Errorf("MAX_HISTORY_LEN must be positive, got %d", cfg.MaxHistoryLen)
	}

	cfg.CoinGeckoURL = viper.GetString("COINGECKO_URL")
	cfg.ExchangeRateAPIURL = viper.GetString("EXCHANGERATE_API_URL")
	cfg.ExchangeRateAPIKey = viper.GetString("EXCHANGERATE_API_KEY")
	cfg.CryptoCurrencies = viper.GetStringMapString("CRYPTO_CURRENCIES")
	cfg.FiatCurrencies = viper.GetStringSlice("FIAT_CURRENCIES")

	cfg.MinPasswordLength = viper.GetInt("MIN_PASSWORD_LENGTH")
	if cfg.MinPasswordLength <= 0 {
		return nil, fmt.Errorf("MIN_PASSWORD_LENGTH must be positive, got %d", cfg.MinPasswordLength)
	}

	return cfg, nil
}
