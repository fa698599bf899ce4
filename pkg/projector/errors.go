package projector

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch matches every ShapeMismatchError.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrAdjointBound is returned when a supplied adjoint already belongs
	// to another pair.
	ErrAdjointBound = errors.New("adjoint already paired with another operator")
)

// ShapeMismatchError reports a space whose shape disagrees with the buffer
// or element it has to describe.
type ShapeMismatchError struct {
	// Operand names the side that disagrees: "domain", "range", "input" or
	// "adjoint"
	Operand string
	Want    [3]int
	Got     [3]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s shape %v does not equal buffer shape %v", e.Operand, e.Want, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// EngineError wraps a failure reported by the projection engine. Buffers
// touched by the failed call hold undefined values.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("projection engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
