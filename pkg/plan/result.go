package plan

import (
	"fmt"
	"time"
)

// Status is the overall verdict of a run.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusSuccess         Status = "Success"
	StatusFailed          Status = "Failed"
	StatusPartiallyFailed Status = "PartiallyFailed" // at least one step failed and at least one succeeded
)

// Outcome is what a capability invocation produces. Exports are the context
// bindings the step contributes; they never appear in the report entry itself.
type Outcome struct {
	OK      bool                   `json:"ok"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data,omitempty"`
	Exports map[string]interface{} `json:"-"`
}

// Succeeded builds a successful Outcome.
func Succeeded(message string, data interface{}) Outcome {
	return Outcome{OK: true, Message: message, Data: data}
}

// Failed builds a failed Outcome.
func Failed(message string, data interface{}) Outcome {
	return Outcome{OK: false, Message: message, Data: data}
}

// Failedf builds a failed Outcome without payload.
func Failedf(format string, args ...interface{}) Outcome {
	return Outcome{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Delta is the set of context bindings one step adds to the run.
type Delta map[string]interface{}

// StepResult is one report entry. It is not modified after it is appended to a Report.
type StepResult struct {
	Step      int       `json:"step"`
	Action    string    `json:"action"`
	Args      Arguments `json:"args"`
	Result    Outcome   `json:"result"`
	Raw       string    `json:"raw,omitempty"` // only set on the parse failure entry
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Report is the output of a run: the ordered step results and the final
// execution context.
type Report struct {
	RunID     string                 `json:"runId"`
	Status    Status                 `json:"status"`
	StartTime time.Time              `json:"startTime"`
	EndTime   time.Time              `json:"endTime"`
	Steps     []StepResult           `json:"steps"`
	Context   map[string]interface{} `json:"context"`
}

// NewReport creates a pending report for the given run.
func NewReport(runID string) *Report {
	return &Report{
		RunID:     runID,
		Status:    StatusPending,
		StartTime: time.Now(),
		Steps:     []StepResult{},
		Context:   map[string]interface{}{},
	}
}

// Append records a step result.
func (r *Report) Append(res StepResult) {
	if res.Args == nil {
		res.Args = Arguments{}
	}
	r.Steps = append(r.Steps, res)
}

// Succeeded counts the successful step results.
func (r *Report) Succeeded() int {
	n := 0
	for _, s := range r.Steps {
		if s.Result.OK {
			n++
		}
	}
	return n
}

// FailedCount counts the failed step results.
func (r *Report) FailedCount() int {
	return len(r.Steps) - r.Succeeded()
}

// Finalize stores the context snapshot, stamps the end time and derives the
// overall status. An empty report is a success.
func (r *Report) Finalize(context map[string]interface{}) {
	if context == nil {
		context = map[string]interface{}{}
	}
	r.Context = context
	r.EndTime = time.Now()

	failed := r.FailedCount()
	switch {
	case failed == 0:
		r.Status = StatusSuccess
	case failed == len(r.Steps):
		r.Status = StatusFailed
	default:
		r.Status = StatusPartiallyFailed
	}
}

// Done reports whether Finalize has run.
func (r *Report) Done() bool {
	return r.Status != StatusPending
}
