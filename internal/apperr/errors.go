package apperr

import "errors"

var (
	ErrInvalidBarcode    = errors.New("invalid barcode")
	ErrInvalidFieldInput = errors.New("invalid field input")
	ErrInterrupted       = errors.New("interrupted")
)
