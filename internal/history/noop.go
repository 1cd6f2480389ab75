package history

import (
	"context"

	"crypto-forecast-dashboard/internal/types"
)

// NoopRecorder is a no-op implementation used when history is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ context.Context, _ types.HistoryEntry) error { return nil }
func (n *NoopRecorder) Recent(_ context.Context, _ int) ([]types.HistoryEntry, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
