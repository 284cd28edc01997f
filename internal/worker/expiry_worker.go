package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpiredCompleter completes tests whose planned duration has elapsed.
type ExpiredCompleter interface {
	CompleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// ExpiryWorker completes expired tests on a fixed interval.
type ExpiryWorker struct {
	lifecycle ExpiredCompleter
	interval  time.Duration
	now       func() time.Time
}

// NewExpiryWorker constructs an ExpiryWorker.
func NewExpiryWorker(lifecycle ExpiredCompleter, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		lifecycle: lifecycle,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs once immediately, then on every tick until ctx is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Expiry worker stopped")
			return
		}
	}
}

func (w *ExpiryWorker) run(ctx context.Context) {
	ids, err := w.lifecycle.CompleteExpired(ctx, w.now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to complete expired tests")
		return
	}
	if len(ids) > 0 {
		log.Info().Strs("test_ids", ids).Msg("Expiry worker completed tests")
	}
}
