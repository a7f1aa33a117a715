package metrics

import "time"

// Outcome classifies a finished check run.
type Outcome string

const (
	OutcomePassed   Outcome = "passed"   // no findings
	OutcomeWarnings Outcome = "warnings" // only findings the policies downgrade
	OutcomeFailed   Outcome = "failed"   // validation or link errors
	OutcomeErrored  Outcome = "errored"  // the run itself could not complete
)

// Trigger records why a run started.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerChange   Trigger = "change"
	TriggerInterval Trigger = "interval"
	TriggerRetry    Trigger = "retry"
)

// Recorder defines observability hooks for check runs.
type Recorder interface {
	IncRun(trigger Trigger)
	ObserveCheckDuration(d time.Duration)
	IncCheckOutcome(outcome Outcome)
	SetFindings(kind string, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncRun(Trigger)                     {}
func (NoopRecorder) ObserveCheckDuration(time.Duration) {}
func (NoopRecorder) IncCheckOutcome(Outcome)            {}
func (NoopRecorder) SetFindings(string, int)            {}
