package content

import "errors"

var (
	ErrNotInitialized = errors.New("content layer is not initialized")
	ErrNoConnection   = errors.New("no usable content connection configured")
	ErrInvalidKey     = errors.New("invalid document key")
)
