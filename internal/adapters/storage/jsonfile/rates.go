package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
	portsrepo "github.com/valutatrade/tradehub/internal/core/ports/repositories"
)

// RatesStore persists the two durable rate artifacts: the table snapshot
// and the raw observation history. Both formats are stable for
// compatibility with existing files.
type RatesStore struct {
	snapshotPath string
	historyPath  string
}

// NewRatesStore creates a gateway writing to the given file paths.
func NewRatesStore(snapshotPath, historyPath string) *RatesStore {
	return &RatesStore{snapshotPath: snapshotPath, historyPath: historyPath}
}

var _ portsrepo.RatesRepositoryFacade = (*RatesStore)(nil)

type rateRecord struct {
	Rate      float64 `json:"rate"`
	UpdatedAt string  `json:"updated_at"`
	Source    string  `json:"source"`
}

type snapshotRecord struct {
	Pairs       map[string]rateRecord `json:"pairs"`
	LastRefresh string                `json:"last_refresh"`
}

type observationMetaRecord struct {
	RawID      string `json:"raw_id"`
	RequestMS  int64  `json:"request_ms"`
	StatusCode int    `json:"status_code"`
	ETag       string `json:"etag"`
}

type observationRecord struct {
	ID           string                `json:"id"`
	FromCurrency string                `json:"from_currency"`
	ToCurrency   string                `json:"to_currency"`
	Rate         float64               `json:"rate"`
	Source       string                `json:"source"`
	Timestamp    string                `json:"timestamp"`
	Meta         observationMetaRecord `json:"meta"`
}

// LoadSnapshot reads the persisted rate table; a missing file yields an
// empty table.
func (s *RatesStore) LoadSnapshot(ctx context.Context) (*domain.RateTable, error) {
	var record snapshotRecord
	if err := readJSON(s.snapshotPath, &record); err != nil {
		return nil, err
	}
	if record.Pairs == nil {
		return domain.EmptyRateTable(), nil
	}
	lastRefresh, err := time.Parse(time.RFC3339Nano, record.LastRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: bad last_refresh in %s: %v", apperrors.ErrCorruptData, s.snapshotPath, err)
	}
	pairs := make(map[string]domain.Rate, len(record.Pairs))
	for key, r := range record.Pairs {
		if _, _, err := domain.ParsePairKey(key); err != nil {
			return nil, fmt.Errorf("%w: %v in %s", apperrors.ErrCorruptData, err, s.snapshotPath)
		}
		updatedAt, err := time.Parse(time.RFC3339Nano, r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad updated_at for %s in %s: %v", apperrors.ErrCorruptData, key, s.snapshotPath, err)
		}
		pairs[key] = domain.Rate{
			Rate:      decimal.NewFromFloat(r.Rate),
			UpdatedAt: updatedAt,
			Source:    r.Source,
		}
	}
	return domain.NewRateTable(pairs, lastRefresh), nil
}

// SaveSnapshot writes the rate table in the stable snapshot format.
func (s *RatesStore) SaveSnapshot(ctx context.Context, table *domain.RateTable) error {
	record := snapshotRecord{
		Pairs:       map[string]rateRecord{},
		LastRefresh: table.LastRefresh().Format(time.RFC3339Nano),
	}
	for key, r := range table.Pairs() {
		record.Pairs[key] = rateRecord{
			Rate:      r.Rate.InexactFloat64(),
			UpdatedAt: r.UpdatedAt.Format(time.RFC3339Nano),
			Source:    r.Source,
		}
	}
	return writeJSON(s.snapshotPath, record)
}

// LoadHistory reads the persisted observation history. Observation IDs are
// reconstructed from the fields, not trusted from the file.
func (s *RatesStore) LoadHistory(ctx context.Context) ([]domain.RateObservation, error) {
	var records []observationRecord
	if err := readJSON(s.historyPath, &records); err != nil {
		return nil, err
	}
	observations := make([]domain.RateObservation, 0, len(records))
	for i, rec := range records {
		timestamp, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: observation [%d]: bad timestamp: %v", apperrors.ErrCorruptData, i, err)
		}
		observations = append(observations, domain.RateObservation{
			FromCurrency: rec.FromCurrency,
			ToCurrency:   rec.ToCurrency,
			Rate:         decimal.NewFromFloat(rec.Rate),
			Timestamp:    timestamp,
			Source:       rec.Source,
			Meta: domain.ObservationMeta{
				RawID:      rec.Meta.RawID,
				RequestMS:  rec.Meta.RequestMS,
				StatusCode: rec.Meta.StatusCode,
				ETag:       rec.Meta.ETag,
			},
		})
	}
	return observations, nil
}

// SaveHistory overwrites the observation history file.
func (s *RatesStore) SaveHistory(ctx context.Context, observations []domain.RateObservation) error {
	records := make([]observationRecord, 0, len(observations))
	for _, obs := range observations {
		records = append(records, observationRecord{
			ID:           obs.ID(),
			FromCurrency: obs.FromCurrency,
			ToCurrency:   obs.ToCurrency,
			Rate:         obs.Rate.InexactFloat64(),
			Source:       obs.Source,
			Timestamp:    obs.Timestamp.Format(time.RFC3339Nano),
			Meta: observationMetaRecord{
				RawID:      obs.Meta.RawID,
				RequestMS:  obs.Meta.RequestMS,
				StatusCode: obs.Meta.StatusCode,
				ETag:       obs.Meta.ETag,
			},
		})
	}
	return writeJSON(s.historyPath, records)
}
