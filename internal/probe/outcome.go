package probe

// Outcome classifies how a run ended.
type Outcome int

// Run outcomes. The zero value is OutcomeFailure so an unset result never
// reads as success.
const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
	OutcomeConfigError
	OutcomeTriggerRejected
	OutcomeTimeout
)

// Process exit codes.
const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitTriggerRejected = 2
	ExitTimeout         = 3
	ExitFailure         = 4
)

// ExitCode maps the outcome to the process exit code callers rely on.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return ExitSuccess
	case OutcomeConfigError:
		return ExitConfigError
	case OutcomeTriggerRejected:
		return ExitTriggerRejected
	case OutcomeTimeout:
		return ExitTimeout
	default:
		return ExitFailure
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConfigError:
		return "config_error"
	case OutcomeTriggerRejected:
		return "trigger_rejected"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "failure"
	}
}
