package usecase

import (
	"context"
	"fmt"

	"AffairsRelay/internal/ports"
)

// FilterNew returns the URLs the store has not recorded yet, in input order.
// Equality is exact string match; a URL repeated in urls is kept once.
func FilterNew(ctx context.Context, store ports.SeenStore, urls []string) ([]string, error) {
	fresh := make([]string, 0, len(urls))
	queued := make(map[string]struct{}, len(urls))

	for _, u := range urls {
		if _, dup := queued[u]; dup {
			continue
		}
		seen, err := store.Seen(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("check seen %s: %w", u, err)
		}
		if seen {
			continue
		}
		queued[u] = struct{}{}
		fresh = append(fresh, u)
	}

	return fresh, nil
}
