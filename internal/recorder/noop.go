package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *Snapshot) error { return nil }
func (n *NoopRecorder) Recent(_ context.Context, _ string, _ int) ([]Snapshot, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
