package orderbackend

import "fmt"

// Kind is the closed set of failure modes from §4.1/§7 the bridge branches
// on — tool dispatch and the identification path each react differently.
type Kind string

const (
	KindTransient      Kind = "transient_backend"
	KindAuthExpired    Kind = "auth_expired"
	KindSchemaMismatch Kind = "schema_mismatch"
)

// Error wraps a backend failure with the Kind callers switch on.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("orderbackend: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetriable reports whether a single retry is worth attempting, per the
// "auth → refresh once then retry once" policy in §4.1.
func IsRetriable(err error) bool {
	var be *Error
	if e, ok := err.(*Error); ok {
		be = e
	} else {
		return false
	}
	return be.Kind == KindTransient || be.Kind == KindAuthExpired
}
