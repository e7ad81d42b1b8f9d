package chat

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is matched by every *ValidationError returned from
// AttachmentManager.Select.
var ErrUnsupportedType = errors.New("unsupported file type")

// ValidationError rejects a file selection.
type ValidationError struct {
	Name     string
	MIMEType string
}

func (e *ValidationError) Error() string {
	return "Please upload a valid file (PDF, image, or CSV)"
}

func (e *ValidationError) Unwrap() error { return ErrUnsupportedType }

// NetworkError is a transport failure talking to the remote API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a response the remote API delivered but that does not
// indicate success: success=false, a non-2xx status, or a body that does
// not decode.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "Something went wrong"
	}
	return e.Message
}

// LoadError wraps a failed history fetch. It is never fatal.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load conversations: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
