package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CheckFunc reports whether the watched condition holds.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Poll runs check immediately and then on every tick until it reports done or fails.
// A cancelled ctx stops the loop with ctx.Err().
func Poll(ctx context.Context, interval time.Duration, logger zerolog.Logger, check CheckFunc) error {
	logger.Debug().Dur("interval", interval).Msg("Poll worker started")
	defer logger.Debug().Msg("Poll worker stopped")

	if done, err := check(ctx); err != nil || done {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := check(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}
