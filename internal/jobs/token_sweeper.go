// Package jobs holds the periodic maintenance work run by the API process.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/api/metrics"
)

const defaultSweepTimeout = 30 * time.Second

// ExpiredTokenClearer removes cached tokens whose expiry has passed.
type ExpiredTokenClearer interface {
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenSweeper clears expired tokens cached on account records. The token
// itself stays unusable after expiry either way; this only keeps the
// accounts collection tidy.
type TokenSweeper struct {
	accounts ExpiredTokenClearer
	timeout  time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewTokenSweeper(accounts ExpiredTokenClearer, log zerolog.Logger) *TokenSweeper {
	return &TokenSweeper{
		accounts: accounts,
		timeout:  defaultSweepTimeout,
		log:      log.With().Str("job", "token_sweeper").Logger(),
		now:      time.Now,
	}
}

// Run implements cron.Job.
func (s *TokenSweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.accounts.ClearExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		s.log.Error().Err(err).Msg("sweep expired tokens")
		return
	}
	metrics.TokensSweptTotal.Add(float64(n))
	if n > 0 {
		s.log.Info().Int64("cleared", n).Msg("expired tokens swept")
	}
}

// Schedule registers the sweeper on a new cron scheduler and starts it.
// The caller stops it with Stop on shutdown.
func Schedule(schedule string, sweeper *TokenSweeper) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, sweeper); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
