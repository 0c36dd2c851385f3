package md5

import (
	"errors"
	"fmt"
)

// ErrInvariant matches every [*InvariantError] via errors.Is.
var ErrInvariant = errors.New("md5: invariant violated")

// InvariantError reports a violated internal invariant, such as a block
// built from the wrong number of words or a malformed block sequence. It is
// raised with panic; it never describes bad caller input.
type InvariantError struct {
	What string
}

func (e *InvariantError) Error() string {
	return "md5: invariant violated: " + e.What
}

// Is implements errors.Is for sentinel error matching.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func invariantf(format string, args ...any) *InvariantError {
	return &InvariantError{What: fmt.Sprintf(format, args...)}
}
