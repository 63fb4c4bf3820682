package models

import "errors"

// ErrValidation marks errors caused by invalid input. Handlers map it to a
// 400 response; it never reaches storage.
var ErrValidation = errors.New("validation failed")
