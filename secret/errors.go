package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} referenced an unset environment variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrUnknownProvider indicates a secretref names no registered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrEmpty indicates a strict resolver received an empty secret.
	ErrEmpty = errors.New("secret: empty value")

	// ErrNotFound indicates a provider has no secret for the reference.
	ErrNotFound = errors.New("secret: not found")
)
