package worker

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naass/lead-api/internal/entity"
	"github.com/naass/lead-api/internal/infra/memstore"
)

func TestSweepRemovesOnlyExpiredDrafts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := memstore.NewDraftStore()
	store.Now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &entity.Draft{
		Key: "stale", FormType: entity.FormTypeContact, ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, store.Upsert(ctx, &entity.Draft{
		Key: "fresh", FormType: entity.FormTypeContact, ExpiresAt: entity.NextExpiry(now),
	}))

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_drafts_expired_total"})
	w := NewDraftExpirationWorker(store, 0, counter, zerolog.Nop())
	w.now = func() time.Time { return now }

	assert.Equal(t, int64(1), w.Sweep(ctx))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))

	assert.Zero(t, w.Sweep(ctx))
}

func TestStartStopsWithContext(t *testing.T) {
	w := NewDraftExpirationWorker(memstore.NewDraftStore(), time.Millisecond, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
