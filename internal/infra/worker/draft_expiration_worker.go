package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/entity"
)

const DefaultSweepInterval = time.Minute

// ExpiredCounter records how many drafts a sweep removed.
type ExpiredCounter interface {
	Add(float64)
}

// DraftExpirationWorker deletes drafts whose expiry has passed. Reads already
// ignore expired drafts; the sweep only reclaims storage.
type DraftExpirationWorker struct {
	repo         entity.DraftRepository
	tickInterval time.Duration
	expired      ExpiredCounter
	now          func() time.Time
	logger       zerolog.Logger
}

func NewDraftExpirationWorker(repo entity.DraftRepository, interval time.Duration, expired ExpiredCounter, logger zerolog.Logger) *DraftExpirationWorker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &DraftExpirationWorker{
		repo:         repo,
		tickInterval: interval,
		expired:      expired,
		now:          time.Now,
		logger:       logger.With().Str("component", "draft-expiration").Logger(),
	}
}

func (w *DraftExpirationWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.tickInterval).Msg("draft expiration worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("draft expiration worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass and returns the number of drafts removed.
func (w *DraftExpirationWorker) Sweep(ctx context.Context) int64 {
	n, err := w.repo.DeleteExpired(ctx, w.now())
	if err != nil {
		w.logger.Error().Err(err).Msg("sweeping expired drafts failed")
		return 0
	}
	if n > 0 {
		if w.expired != nil {
			w.expired.Add(float64(n))
		}
		w.logger.Info().Int64("deleted", n).Msg("expired drafts removed")
	}
	return n
}
