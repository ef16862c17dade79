package pathway

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrMissingData         = errors.New("pathway: missing data")
	ErrMalformedExpression = errors.New("pathway: malformed expression")
	ErrUnknownCourse       = errors.New("pathway: unknown course")
)

// MissingDataError reports an input file that is absent or cannot be decoded.
// It is fatal: scheduling never starts without a complete dataset.
type MissingDataError struct {
	Kind string
	Path string
	Err  error
}

func (e *MissingDataError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("pathway: %s data unavailable: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("pathway: %s data unavailable at %s: %v", e.Kind, e.Path, e.Err)
}

func (e *MissingDataError) Unwrap() error { return e.Err }

func (e *MissingDataError) Is(target error) bool { return target == ErrMissingData }

// MalformedExpressionError describes a prerequisite or requirement shape that
// could not be normalized. The offending branch is dropped, so the course it
// belonged to is treated as unconstrained by that branch.
type MalformedExpressionError struct {
	Course string
	Value  any
	Reason string
}

func (e *MalformedExpressionError) Error() string {
	subject := e.Course
	if subject == "" {
		subject = "<unknown>"
	}
	return fmt.Sprintf("pathway: malformed expression for %s: %s (%v)", subject, e.Reason, e.Value)
}

func (e *MalformedExpressionError) Is(target error) bool { return target == ErrMalformedExpression }

// UnknownCourseError marks a candidate that is missing from the catalog. The
// course defaults to DefaultUnits and has no prerequisite.
type UnknownCourseError struct {
	Course string
}

func (e *UnknownCourseError) Error() string {
	return fmt.Sprintf("pathway: course %q not in catalog", e.Course)
}

func (e *UnknownCourseError) Is(target error) bool { return target == ErrUnknownCourse }
