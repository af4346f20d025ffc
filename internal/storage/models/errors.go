package models

import "errors"

// ErrValidation is the base error for pre-save validation failures.
// Callers match it with errors.Is; the wrapping message names the field.
var ErrValidation = errors.New("validation failed")
