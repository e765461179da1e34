package tenant

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTenantID = errors.New("tenant id is not usable as a schema identifier")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrTenantInactive  = errors.New("tenant is deactivated")
	ErrSchemaNotFound  = errors.New("tenant schema does not exist")
	ErrNoTenant        = errors.New("no tenant bound to request context")
)

// QueryError carries the failed statement template alongside the driver error.
// The template only ever contains the schema placeholder and positional
// parameter markers, so it is safe to log verbatim.
type QueryError struct {
	Stmt string
	Err  error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query failed: %v", e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }

// ConnectionError marks failures that never produced a server response:
// pool exhaustion, network drops, timeouts.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("database unavailable: %v", e.Err) }

func (e *ConnectionError) Unwrap() error { return e.Err }
