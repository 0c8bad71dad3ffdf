package bootstrap

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenCleaner removes stale refresh tokens
type TokenCleaner interface {
	CleanupTokens(ctx context.Context) (int64, error)
}

// RunTokenCleanup cleans refresh tokens once, then on every interval until ctx ends.
func RunTokenCleanup(ctx context.Context, cleaner TokenCleaner, interval time.Duration, lgr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		deleted, err := cleaner.CleanupTokens(ctx)
		if err != nil {
			lgr.Error().Err(err).Msg("Refresh token cleanup failed")
		} else if deleted > 0 {
			lgr.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired refresh tokens")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
