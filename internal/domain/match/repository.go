package match

import "context"

// Reader fetches match metadata from the tournament backend.
type Reader interface {
	GetByID(ctx context.Context, matchID string) (Match, error)
}
