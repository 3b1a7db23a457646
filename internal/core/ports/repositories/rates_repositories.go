package repositories

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RateSnapshotReader loads the last persisted rate table snapshot.
type RateSnapshotReader interface {
	// LoadSnapshot returns the persisted table, or an empty table if none
	// has been written yet.
	LoadSnapshot(ctx context.Context) (*domain.RateTable, error)
}

// RateSnapshotWriter persists a rate table snapshot in the stable wire format.
type RateSnapshotWriter interface {
	SaveSnapshot(ctx context.Context, table *domain.RateTable) error
}

// ObservationHistoryWriter persists the raw per-source observation history.
type ObservationHistoryWriter interface {
	SaveHistory(ctx context.Context, observations []domain.RateObservation) error
}

// ObservationHistoryReader loads the persisted observation history.
type ObservationHistoryReader interface {
	LoadHistory(ctx context.Context) ([]domain.RateObservation, error)
}

// RatesRepositoryFacade combines the two durable rate artifacts: the
// snapshot and the observation history.
type RatesRepositoryFacade interface {
	RateSnapshotReader
	RateSnapshotWriter
	ObservationHistoryReader
	ObservationHistoryWriter
}
