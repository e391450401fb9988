// Package publish emits the end-of-run summary event so downstream
// consumers can pick up fresh datasets without polling.
package publish

import "context"

// NoOp drops every event. Used when no topic is configured.
type NoOp struct{}

// Publish does nothing and always returns nil.
func (NoOp) Publish(_ context.Context, _ any) error { return nil }

// Close does nothing.
func (NoOp) Close() error { return nil }

// RunSummary is the payload published once per completed run.
type RunSummary struct {
	RunID        string `json:"run_id"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
	Keywords     int    `json:"keywords"`
	Searches     int    `json:"searches"`
	PostsFetched int    `json:"posts_fetched"`
	RecordsSaved int    `json:"records_saved"`
	Aborted      bool   `json:"aborted"`
}
