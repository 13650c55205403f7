package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a revision request produced no usable text.
type ErrorKind string

const (
	KindUnreachable ErrorKind = "service_unreachable"
	KindStatus      ErrorKind = "service_error"
	KindMalformed   ErrorKind = "malformed_response"
)

// ServiceError is returned by clients for every failed revision call.
type ServiceError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s", e.Provider, e.Kind, e.Message)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind carried by err. Errors that did not come from
// a client are treated as unreachable.
func KindOf(err error) ErrorKind {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnreachable
}

func unreachable(provider string, err error) *ServiceError {
	return &ServiceError{Kind: KindUnreachable, Provider: provider, Err: err}
}

func malformed(provider, message string, err error) *ServiceError {
	return &ServiceError{Kind: KindMalformed, Provider: provider, Message: message, Err: err}
}
