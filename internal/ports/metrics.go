package ports

import "time"

// SyncMetrics counts what the sync flows did.
type SyncMetrics interface {
	PushRecord(kind string, result string)
	PullStep(dataset string, result string, rows int)
	ObserveDuration(flow string, elapsed time.Duration)
}

type NopMetrics struct{}

func (NopMetrics) PushRecord(string, string)              {}
func (NopMetrics) PullStep(string, string, int)           {}
func (NopMetrics) ObserveDuration(string, time.Duration) {}
