// Package errs declares error types used as exception causes.
package errs

import (
	"fmt"
	"strconv"
)

// UnboundVariable is raised when a variable is looked up in an environment
// that does not bind it.
type UnboundVariable struct {
	Name string
}

// Error implements the error interface.
func (e UnboundVariable) Error() string {
	return "unbound variable: " + e.Name
}

// NotAFunction is raised when a value that is not a function is applied.
type NotAFunction struct {
	// Repr is the source representation of the value.
	Repr string
}

// Error implements the error interface.
func (e NotAFunction) Error() string {
	return "not a function: " + e.Repr
}

// TooManyArguments is raised when a function that takes no more parameters is
// applied.
type TooManyArguments struct {
	Repr string
}

// Error implements the error interface.
func (e TooManyArguments) Error() string {
	return "too many arguments: " + e.Repr + " takes no more parameters"
}

// DivergenceDetected is raised when an evaluation is stopped because it does
// not appear to terminate.
type DivergenceDetected struct {
	// Steps is the number of full reductions performed before stopping.
	Steps int
	// Cycle is true when a reduction state recurred while it was still being
	// reduced, and false when the step ceiling was exceeded.
	Cycle bool
}

// Error implements the error interface.
func (e DivergenceDetected) Error() string {
	if e.Cycle {
		return fmt.Sprintf("divergence detected: reduction cycle after %d steps", e.Steps)
	}
	return "divergence detected: exceeded " + strconv.Itoa(e.Steps) + " reduction steps"
}
