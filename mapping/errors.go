package mapping

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for descriptor construction and resolution.
var (
	// ErrDescriptor indicates a descriptor is malformed or missing.
	ErrDescriptor = errors.New("mapping: invalid descriptor")

	// ErrNoDescriptor indicates no descriptor is registered for a view type.
	ErrNoDescriptor = errors.New("mapping: no descriptor registered")

	// ErrUnknownSourceField indicates a binding names a field the source type lacks.
	ErrUnknownSourceField = errors.New("mapping: unknown source field")

	// ErrContractViolation is the umbrella for a source not honoring the
	// shape its bindings expect.
	ErrContractViolation = errors.New("contract violation")
)

// DescriptorError reports a malformed descriptor.
type DescriptorError struct {
	View   reflect.Type
	Field  string
	Reason string
	Err    error
}

func (e *DescriptorError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("mapping: view %s field %q: %s", typeName(e.View), e.Field, e.Reason)
	}
	return fmt.Sprintf("mapping: view %s: %s", typeName(e.View), e.Reason)
}

func (e *DescriptorError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDescriptor, e.Err}
	}
	return []error{ErrDescriptor}
}

// UnknownSourceFieldError reports a binding to a field absent from its source type.
type UnknownSourceFieldError struct {
	Source reflect.Type
	Field  string
}

func (e *UnknownSourceFieldError) Error() string {
	return fmt.Sprintf("property %s does not exist in type %s", e.Field, typeName(e.Source))
}

func (e *UnknownSourceFieldError) Unwrap() []error {
	return []error{ErrUnknownSourceField, ErrContractViolation}
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
