package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by usecases and adapters.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInfeasible              = errors.New("no logistics options available - check inventory or distance constraints")
	ErrExternalServiceDegraded = errors.New("external service degraded")
	ErrUnexpected              = errors.New("unexpected error")
)

// Stage names a step of the recommendation state machine.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageValidating Stage = "validating"
	StageSimulating Stage = "simulating"
	StageScoring    Stage = "scoring"
	StageRanking    Stage = "ranking"
)

// StageError records the stage a recommendation failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailAt wraps err with the given stage. Errors outside the taxonomy are marked ErrUnexpected.
func FailAt(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	if !IsKnown(err) {
		err = fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return &StageError{Stage: stage, Err: err}
}

// IsKnown reports whether err belongs to the caller-visible taxonomy.
func IsKnown(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInfeasible) ||
		errors.Is(err, ErrUnexpected)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
