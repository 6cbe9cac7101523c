// Package common defines sentinel errors shared by the repositories, services
// and the HTTP layer of the diary service. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrConflict reports a transaction aborted by a concurrent writer
	// (serialization failure).
	ErrConflict = errors.New("conflict with concurrent update")

	// Validation errors.
	ErrInvalidDate = errors.New("invalid date")

	// Weather API errors. Unavailable covers transport failures and non-2xx
	// replies; Parse covers payloads that are not the expected JSON shape.
	ErrWeatherUnavailable = errors.New("weather unavailable")
	ErrWeatherParse       = errors.New("weather parse error")
)
