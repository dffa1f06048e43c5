package tensor

import (
	"errors"
	"fmt"
)

// Domain errors for malformed layer data.
var (
	// ErrUnsupportedShape indicates a tensor rank the consumer cannot handle.
	ErrUnsupportedShape = errors.New("tensor: unsupported shape")

	// ErrMissingParameters indicates a layer kind that needs weights was given none.
	ErrMissingParameters = errors.New("tensor: missing layer parameters")

	// ErrShapeMismatch indicates two tensors whose sizes must agree do not.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")

	// ErrEmptyLayout indicates a layout was requested for zero nodes.
	ErrEmptyLayout = errors.New("tensor: empty layout")

	// ErrIndexOutOfRange indicates a node index outside its layout.
	ErrIndexOutOfRange = errors.New("tensor: node index out of range")
)

// LayerError wraps an error with the layer it was raised for.
type LayerError struct {
	Layer   string
	Kind    Kind
	Wrapped error
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %s (%s): %v", e.Layer, e.Kind, e.Wrapped)
}

func (e *LayerError) Unwrap() error {
	return e.Wrapped
}

// Wrap attaches layer context to err. A nil err stays nil.
func Wrap(layer string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &LayerError{Layer: layer, Kind: kind, Wrapped: err}
}
