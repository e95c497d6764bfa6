package domain

// OutcomeKind separates a clean result, a usable fallback, and a hard failure.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeDegraded
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	default:
		return "fatal"
	}
}

// Outcome is the result of a best-effort external step.
// Degraded carries a usable default plus the reason it was substituted.
type Outcome[T any] struct {
	Value  T
	Kind   OutcomeKind
	Reason string
	Err    error
}

// Ok wraps a clean value.
func Ok[T any](v T) Outcome[T] { return Outcome[T]{Value: v, Kind: OutcomeOK} }

// Degraded wraps a fallback value and why it was used.
func Degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Kind: OutcomeDegraded, Reason: reason}
}

// Fatal wraps an error that must abort the evaluation attempt.
func Fatal[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: OutcomeFatal, Err: err, Reason: errString(err)}
}

func (o Outcome[T]) IsDegraded() bool { return o.Kind == OutcomeDegraded }
func (o Outcome[T]) IsFatal() bool    { return o.Kind == OutcomeFatal }

// Unwrap returns the value, or the error for fatal outcomes.
func (o Outcome[T]) Unwrap() (T, error) {
	if o.Kind == OutcomeFatal {
		var zero T
		return zero, o.Err
	}
	return o.Value, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
