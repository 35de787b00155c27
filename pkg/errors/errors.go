package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation is returned when request input cannot be processed
// (missing CSV columns, empty item lists, unresolvable supplier, ...)
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrMissingSecret is returned when a required credential cannot be resolved
type ErrMissingSecret struct {
	Name string
}

func (e *ErrMissingSecret) Error() string {
	return fmt.Sprintf("secret %s is not set", e.Name)
}

// ErrUpstream is returned when the vendor API answers with an error status.
// The body is truncated before it is stored here; the client logs the full
// diagnostic context separately.
type ErrUpstream struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("lightspeed %s %s failed: status %d, body: %s", e.Method, e.URL, e.Status, e.Body)
}

// ErrProductValidation is returned when the vendor rejects a product
// creation payload (HTTP 422). The response body is carried verbatim so the
// caller can surface it to the user.
type ErrProductValidation struct {
	ProductName string
	Body        string
}

func (e *ErrProductValidation) Error() string {
	return fmt.Sprintf("product creation failed for '%s': %s", e.ProductName, e.Body)
}
