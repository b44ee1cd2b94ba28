package report

// Check identifies the rule instance a violation originates from.
// It is implemented by the engine's check instances.
type Check interface {
	// Name returns the declared name of the check type.
	Name() string

	// Motivation returns the human-readable rationale behind the check,
	// or an empty string when none was declared.
	Motivation() string
}

// Violation is a single reported rule failure.
type Violation struct {
	// Check is the originating check instance.
	Check Check

	// Target is the run-target the violation was found in, usually a file path.
	Target string

	// Line is the line locator within the target. Valid only when HasLine is set.
	Line int

	// HasLine reports whether Line carries a locator.
	HasLine bool

	// Text is the offending content, if any.
	Text string

	// Reason explains the violation, if any.
	Reason string
}

// Sink receives violation records. Findings accumulate into a count;
// a non-zero count is the run's sole soft-failure signal.
type Sink interface {
	// Report records one violation.
	Report(v Violation)

	// Count returns the number of violations reported so far.
	Count() int
}
