package recorder

import (
	"context"

	"github.com/google/uuid"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ context.Context, snap *ScanSnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	return nil
}

func (n *NoopRecorder) RecordAlert(_ context.Context, _ *AlertEvent) error { return nil }

func (n *NoopRecorder) RecentScans(_ context.Context, _ string, _ int) ([]ScanRecord, error) {
	return []ScanRecord{}, nil
}

func (n *NoopRecorder) Close() error { return nil }
