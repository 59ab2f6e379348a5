package render

import "errors"

// Errors returned by recoverable failures. Callers compare with errors.Is;
// the returned errors wrap these with call-specific detail.
var (
	ErrOutOfRange            = errors.New("range out of bounds")
	ErrEmptyRange            = errors.New("empty primitive range")
	ErrIncompatibleFormat    = errors.New("vertex format incompatible with program")
	ErrCompileFailed         = errors.New("shader compilation failed")
	ErrLinkFailed            = errors.New("program linking failed")
	ErrValidationFailed      = errors.New("program validation failed")
	ErrAllocationFailed      = errors.New("gpu allocation failed")
	ErrInterfaceMismatch     = errors.New("program interface mismatch")
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
)
