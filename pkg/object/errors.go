package object

import "errors"

var (
	// ErrObjectNotFound is returned when no stored file exists for an id.
	ErrObjectNotFound = errors.New("object not found")
	// ErrCorruptObject is returned when stored bytes do not decode.
	ErrCorruptObject = errors.New("corrupt object")
)
