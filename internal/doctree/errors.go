package doctree

import (
	"errors"
	"fmt"
)

var (
	ErrPositionOutOfRange = errors.New("doctree: position out of range")
	ErrInvalidRange       = errors.New("doctree: range does not fit the document structure")
	ErrContentNotAllowed  = errors.New("doctree: content not allowed here")
	ErrUnknownNodeType    = errors.New("doctree: unknown node type")
)

// StepError reports a failed transaction step with its position.
type StepError struct {
	Op  string // "insert" or "delete"
	Pos int
	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("doctree.%s at %d: %v", e.Op, e.Pos, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
