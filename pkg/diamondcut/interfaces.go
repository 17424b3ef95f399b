package diamondcut

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned when two desired facets claim one selector
	ErrConflict = errors.New("selector conflict")

	// ErrUnknownDeletionTarget is returned when a deletion names a selector the diamond does not route
	ErrUnknownDeletionTarget = errors.New("unknown method to delete")

	// ErrMalformedInput is returned by loaders for input that cannot be parsed
	ErrMalformedInput = errors.New("malformed input")
)

// Loupe reads the routing table currently deployed on a diamond.
// Implementations may read a file snapshot or query a node.
type Loupe interface {
	// Facets returns every facet with the selectors it serves.
	Facets(ctx context.Context) ([]LoupeFacet, error)
}
