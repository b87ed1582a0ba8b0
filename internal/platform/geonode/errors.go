package geonode

import "fmt"

// InvalidDeploymentError is returned when the backend URL of a deployment
// can not be built.
type InvalidDeploymentError struct {
	Deployment string
	Err        error
}

func (e *InvalidDeploymentError) Error() string {
	return fmt.Sprintf("Invalid deployment: %s: %v", e.Deployment, e.Err)
}

func (e *InvalidDeploymentError) Unwrap() error { return e.Err }

// ForwardingError wraps any transport failure talking to the geo node.
type ForwardingError struct {
	Err error
}

func (e *ForwardingError) Error() string {
	return fmt.Sprintf("Error forwarding query: %v", e.Err)
}

func (e *ForwardingError) Unwrap() error { return e.Err }

// StatusQueryError is returned when the status endpoint answers with a body
// that carries neither data nor errors.
type StatusQueryError struct {
	Err error
}

func (e *StatusQueryError) Error() string {
	return fmt.Sprintf("Status query failed: %v", e.Err)
}

func (e *StatusQueryError) Unwrap() error { return e.Err }
