package torbox

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// source lists one of the two remote collections (active or queued) in a common shape.
type source[T any] func(ctx context.Context) ([]T, error)

// fatal returns the error a lookup must propagate, or nil when err is a transport
// failure (or ITEM_NOT_FOUND) that lookups skip over. Cancellation and remote
// application errors such as BAD_TOKEN are fatal.
func fatal(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var remote *Error
	if errors.As(err, &remote) && !errors.Is(err, ErrItemNotFound) {
		return err
	}
	return nil
}

// firstMatch walks the sources in priority order and returns the first item accepted
// by match. A source failing in transport counts as empty.
func firstMatch[T any](ctx context.Context, log zerolog.Logger, match func(*T) bool, sources ...source[T]) (*T, error) {
	for i, src := range sources {
		items, err := src(ctx)
		if err != nil {
			if ferr := fatal(ctx, err); ferr != nil {
				return nil, ferr
			}
			log.Debug().Err(err).Int("source", i).Msg("Lookup source failed, trying next")
			continue
		}
		for j := range items {
			if match(&items[j]) {
				return &items[j], nil
			}
		}
	}
	return nil, ErrNotFound
}

// mergeAll fetches both collections concurrently and returns active items followed
// by queued ones whose key is not already active.
func mergeAll[T any](ctx context.Context, active, queued source[T], key func(*T) string) ([]T, error) {
	var current, pending []T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = active(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = queued(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(current))
	out := make([]T, 0, len(current)+len(pending))
	for i := range current {
		seen[key(&current[i])] = struct{}{}
		out = append(out, current[i])
	}
	for i := range pending {
		if _, ok := seen[key(&pending[i])]; ok {
			continue
		}
		out = append(out, pending[i])
	}
	return out, nil
}
