package schema

import "errors"

// Domain-specific errors для классификации
var (
	ErrUnknownFileType  = errors.New("file type not recognized")
	ErrEmptyRegistry    = errors.New("signature registry is empty")
	ErrInvalidSignature = errors.New("invalid signature descriptor")
)
