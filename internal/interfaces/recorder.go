package interfaces

import (
	"context"

	"crypto-forecast-dashboard/internal/types"
)

type Recorder interface {
	Record(ctx context.Context, entry types.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	Close() error
}
