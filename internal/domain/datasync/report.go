package datasync

import (
	"fmt"
	"strings"
)

type RecordKind string

const (
	RecordKindShift     RecordKind = "shift"
	RecordKindChecklist RecordKind = "checklist"
)

type Outcome string

const (
	OutcomeNothingToSend Outcome = "nothing_to_send"
	OutcomeSuccess       Outcome = "success"
	OutcomePartial       Outcome = "partial"
)

// Failure keeps the record identity and the server message verbatim so the
// operator can retry selectively.
type Failure struct {
	Kind     RecordKind `json:"kind" yaml:"kind"`
	RecordID int64      `json:"record_id" yaml:"record_id"`
	UUID     string     `json:"uuid" yaml:"uuid"`
	Message  string     `json:"message" yaml:"message"`
}

type PushReport struct {
	Sent     int       `json:"sent" yaml:"sent"`
	Failed   int       `json:"failed" yaml:"failed"`
	Failures []Failure `json:"failures" yaml:"failures"`
	Outcome  Outcome   `json:"outcome" yaml:"outcome"`
	Message  string    `json:"message" yaml:"message"`
}

func (r *PushReport) RecordSuccess() {
	r.Sent++
}

func (r *PushReport) RecordFailure(f Failure) {
	r.Failed++
	r.Failures = append(r.Failures, f)
}

// Finish sets Outcome and Message from the counters.
func (r *PushReport) Finish() {
	switch {
	case r.Sent == 0 && r.Failed == 0:
		r.Outcome = OutcomeNothingToSend
		r.Message = "Nothing to send."
	case r.Failed == 0:
		r.Outcome = OutcomeSuccess
		r.Message = fmt.Sprintf("%d record(s) sent successfully.", r.Sent)
	default:
		r.Outcome = OutcomePartial
		var b strings.Builder
		fmt.Fprintf(&b, "%d record(s) sent, %d failed:", r.Sent, r.Failed)
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "\n- %s %d: %s", f.Kind, f.RecordID, f.Message)
		}
		r.Message = b.String()
	}
}

type PullStepResult struct {
	Step    string  `json:"step" yaml:"step"`
	Dataset Dataset `json:"dataset" yaml:"dataset"`
	Rows    int     `json:"rows" yaml:"rows"`
}

type PullReport struct {
	CostCenterID string           `json:"cost_center_id,omitempty" yaml:"cost_center_id,omitempty"`
	Steps        []PullStepResult `json:"steps" yaml:"steps"`
	Message      string           `json:"message" yaml:"message"`
}

func (r *PullReport) Finish() {
	rows := 0
	for _, step := range r.Steps {
		rows += step.Rows
	}
	r.Message = fmt.Sprintf("Reference data updated: %d step(s), %d row(s).", len(r.Steps), rows)
}

// Percent returns the share of done over total as 0..100.
func Percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
