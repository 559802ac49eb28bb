package ports

// ProgressReporter receives sync progress. The orchestrator owns no UI
// state; callers render these however they like.
type ProgressReporter interface {
	OnProgressChange(step string, percentage float64)
	OnProgressUpdate(line string)
	OnSuccess(message string)
	OnError(message string)
}

// NopProgress discards every event.
type NopProgress struct{}

func (NopProgress) OnProgressChange(string, float64) {}
func (NopProgress) OnProgressUpdate(string)          {}
func (NopProgress) OnSuccess(string)                 {}
func (NopProgress) OnError(string)                   {}
