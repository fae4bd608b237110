package catalog

import (
	"errors"
	"fmt"
)

// ErrCatalogUnavailable is returned when the catalog file is missing,
// unreadable or malformed.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ErrEmptyPool is returned when random selection has no candidates.
var ErrEmptyPool = errors.New("no APIs match the criteria")

// NotFoundError reports a name with no matching catalog record.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("API '%s' not found", e.Name)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
