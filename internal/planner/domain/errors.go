package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput indicates malformed optimizer input: a bad window, a
// non-positive duration, or a request that could never fit the window.
// Nothing is attempted when it is reported.
var ErrInvalidInput = errors.New("invalid input")

// InfeasibleError reports that valid input admits no arrangement satisfying
// every study request. Unplaced lists the subjects that could not be
// scheduled so callers can relax constraints and retry; requests are never
// silently dropped or truncated.
type InfeasibleError struct {
	Unplaced []string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("schedule infeasible: no room for %s", strings.Join(e.Unplaced, ", "))
}

// IsInfeasible reports whether err is an infeasibility failure.
func IsInfeasible(err error) bool {
	var infeasible *InfeasibleError
	return errors.As(err, &infeasible)
}
