package catalog

import "github.com/prodex-cloud/prodex/internal/domain"

// Op constants name driver operations for error context.
const (
	OpSelect = "select"
	OpSample = "sample"
	OpPing   = "ping"
	OpScan   = "scan"
)

// Error wraps an underlying driver error with the operation name.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "catalog " + e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is treats connectivity failures as catalog unavailability. Query errors
// stay distinct so their message reaches the client.
func (e *Error) Is(target error) bool {
	return target == domain.ErrCatalogUnavailable && e.Op == OpPing
}
