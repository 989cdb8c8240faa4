package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline stages. Match them with errors.Is.
var (
	ErrIO      = errors.New("io error")
	ErrParse   = errors.New("parse error")
	ErrSchema  = errors.New("schema error")
	ErrRender  = errors.New("render error")
	ErrCompose = errors.New("compose error")
)

// PipelineError ties a failure to its kind and the operation that produced it.
type PipelineError struct {
	Kind error
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewError builds a PipelineError of the given kind with a formatted cause.
func NewError(kind error, op string, format string, args ...interface{}) error {
	return &PipelineError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapError attaches a kind to an existing error.
func WrapError(kind error, op string, err error) error {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}
