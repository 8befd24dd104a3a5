package state

import (
	"errors"
	"fmt"
)

// ErrDestroyed is returned by operations that need the live event stream —
// Refresh, RefreshAll, Select and SelectField — after Destroy has been
// called. Purely local reads (Get, GetStore, HasStore) keep working on the
// cached values.
var ErrDestroyed = errors.New("state: registry destroyed")

// NotFoundError reports an identifier that resolves to no registered store.
type NotFoundError struct {
	// Identifier is the store name that failed to resolve.
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("state: no store registered for %q", e.Identifier)
}
