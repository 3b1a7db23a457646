package ports

import (
	"context"

	"github.com/valutatrade/tradehub/internal/core/domain"
)

// RateSource is one external price provider. Implementations fail with a
// typed apperrors.TransportError, apperrors.HTTPStatusError or
// apperrors.MalformedPayloadError so the aggregator can log which kind of
// failure occurred.
type RateSource interface {
	// Name identifies the source in filters, logs and observations.
	Name() string

	// FetchObservations fetches the source's current readings. The context
	// bounds the underlying network calls.
	FetchObservations(ctx context.Context) ([]domain.RateObservation, error)
}
