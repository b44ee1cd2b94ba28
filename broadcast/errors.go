package broadcast

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three fault families. All of them signal
// rule-authoring bugs, not bad input: callers are expected to let them
// abort the run rather than recover.
var (
	// ErrDeclaration is returned when a source or check type is declared illegally.
	ErrDeclaration = errors.New("illegal declaration")

	// ErrContract is returned when a subscriber lacks the handler its
	// subscription requires. Detected at first broadcast, not at construction.
	ErrContract = errors.New("handler contract violated")

	// ErrSuppression is returned on invalid suppress/resume sequencing.
	ErrSuppression = errors.New("illegal suppression")
)

// DeclarationError reports an illegal source or check type declaration.
type DeclarationError struct {
	// Type is the name of the offending type.
	Type string

	// Reason describes what was wrong with the declaration.
	Reason string
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("illegal declaration of %s: %s", e.Type, e.Reason)
}

// Is implements error matching for errors.Is(err, ErrDeclaration).
func (e *DeclarationError) Is(target error) bool {
	return target == ErrDeclaration
}

// ContractError reports a subscriber that does not implement the handler
// required by one of its subscriptions.
type ContractError struct {
	// Check is the name of the subscriber's check type.
	Check string

	// Source is the name of the broadcasting source type.
	Source string

	// Handler is the expected handler name.
	Handler string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s subscribed to %s but does not implement %s", e.Check, e.Source, e.Handler)
}

// Is implements error matching for errors.Is(err, ErrContract).
func (e *ContractError) Is(target error) bool {
	return target == ErrContract
}

// SuppressionError reports an invalid suppress or resume call.
type SuppressionError struct {
	// Check is the name of the check instance's type.
	Check string

	// Source is the name of the source type the call referred to.
	Source string

	// Reason describes the sequencing mistake.
	Reason string
}

func (e *SuppressionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Check, e.Source, e.Reason)
}

// Is implements error matching for errors.Is(err, ErrSuppression).
func (e *SuppressionError) Is(target error) bool {
	return target == ErrSuppression
}
