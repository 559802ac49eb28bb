package fieldrecord

// State is the local lifecycle of a root record. Finalized is terminal
// locally; the only later transition is deletion after remote acceptance.
type State string

const (
	StateDraft     State = "draft"
	StateFinalized State = "finalized"
)
