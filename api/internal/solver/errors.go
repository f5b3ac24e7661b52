package solver

import (
	"errors"
	"fmt"
)

var (
	// ErrSolveFailed covers every transport, status, parse and schema failure
	// of a solve. Callers only ever need errors.Is(err, ErrSolveFailed).
	ErrSolveFailed = errors.New("solve failed")

	// ErrEmptyProblem is returned when the problem is blank after trimming.
	ErrEmptyProblem = errors.New("problem text is empty")

	ErrUnknownEngine = errors.New("unknown llm engine")
)

// SolveError keeps the underlying cause for logs while matching ErrSolveFailed.
type SolveError struct {
	Engine string
	Cause  error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSolveFailed, e.Engine, e.Cause)
}

func (e *SolveError) Unwrap() []error { return []error{ErrSolveFailed, e.Cause} }

type unknownEngineError struct{ name string }

func (e *unknownEngineError) Error() string {
	return fmt.Sprintf("%s %q; use gemini | vertex | gpt | deepseek | yandex", ErrUnknownEngine, e.name)
}

func (e *unknownEngineError) Unwrap() error { return ErrUnknownEngine }
