package process

// Outcome is how a run ended.
type Outcome string

// Run outcomes.
const (
	OutcomeSuccess   Outcome = "success"   // exited 0
	OutcomeCancelled Outcome = "cancelled" // stopped by signal or context
	OutcomeFailed    Outcome = "failed"    // non-zero exit or could not start
)

// Result describes a finished run.
type Result struct {
	Outcome  Outcome
	ExitCode int
	Err      error // spawn or wait error; nil on success and cancellation
}
