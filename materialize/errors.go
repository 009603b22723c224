package materialize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jonwraymond/viewcache/mapping"
)

var (
	// ErrProviderMissing indicates a source group has no registered provider.
	ErrProviderMissing = errors.New("materialize: provider missing")

	// ErrParameterMissing indicates required provider parameters are absent.
	ErrParameterMissing = errors.New("materialize: parameter missing")

	// ErrContractViolation indicates a provider or source did not honor the
	// shape declared for it. Shared with mapping so errors.Is matches unknown
	// source fields as well.
	ErrContractViolation = mapping.ErrContractViolation
)

// ProviderMissingError names a source type with no registered provider.
type ProviderMissingError struct {
	View   reflect.Type
	Source reflect.Type
}

func (e *ProviderMissingError) Error() string {
	return fmt.Sprintf("materialize: no provider registered for source %s required by view %s",
		typeName(e.Source), typeName(e.View))
}

func (e *ProviderMissingError) Unwrap() error { return ErrProviderMissing }

// ParameterMissingError lists every parameter a provider declared that the
// parameter map does not contain.
type ParameterMissingError struct {
	Provider string
	Names    []string
}

func (e *ParameterMissingError) Error() string {
	return fmt.Sprintf("materialize: parameters %s were not provided for provider %s",
		strings.Join(e.Names, ", "), e.Provider)
}

func (e *ParameterMissingError) Unwrap() error { return ErrParameterMissing }

// ContractViolationError reports a provider whose result does not match its
// declared source type.
type ContractViolationError struct {
	Provider string
	Expected reflect.Type
	Actual   reflect.Type
	// Reason replaces the expected/actual wording when set.
	Reason string
}

func (e *ContractViolationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("materialize: provider %s: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("materialize: provider %s returned %s, expected %s",
		e.Provider, typeName(e.Actual), typeName(e.Expected))
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// ProviderError wraps an error returned by a provider itself.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("materialize: provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
