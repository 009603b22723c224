package provider

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for provider operations.
var (
	// ErrRegistration indicates a provider could not be registered.
	ErrRegistration = errors.New("provider: registration failed")

	// ErrParameterType indicates an argument does not have the type the
	// provider declares.
	ErrParameterType = errors.New("provider: parameter type mismatch")
)

// RegistrationError reports a rejected registration.
type RegistrationError struct {
	Source reflect.Type
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("provider: cannot register %s: %s", typeName(e.Source), e.Reason)
}

func (e *RegistrationError) Unwrap() error { return ErrRegistration }

// ParameterTypeError reports an argument whose dynamic type does not match
// the provider's parameter.
type ParameterTypeError struct {
	Param string
	Index int
	Want  reflect.Type
	Got   reflect.Type
}

func (e *ParameterTypeError) Error() string {
	name := e.Param
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("provider: parameter %s: want %s, got %s", name, typeName(e.Want), typeName(e.Got))
}

func (e *ParameterTypeError) Unwrap() error { return ErrParameterType }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
