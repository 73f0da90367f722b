package batch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/batch"
)

type jobFunc func(ctx context.Context) error

func (f jobFunc) Run(ctx context.Context) error { return f(ctx) }

func TestNewScheduler(t *testing.T) {
	noop := jobFunc(func(context.Context) error { return nil })

	t.Run("registers the job", func(t *testing.T) {
		c, err := batch.NewScheduler("*/5 * * * *", time.Minute, "status_sweep", noop, discardLogger)
		require.NoError(t, err)
		assert.Len(t, c.Entries(), 1)
	})

	t.Run("defaults an empty spec", func(t *testing.T) {
		c, err := batch.NewScheduler("", 0, "status_sweep", noop, discardLogger)
		require.NoError(t, err)
		assert.Len(t, c.Entries(), 1)
	})

	t.Run("rejects an invalid spec", func(t *testing.T) {
		_, err := batch.NewScheduler("every day at noon", time.Minute, "status_sweep", noop, discardLogger)
		assert.Error(t, err)
	})

	t.Run("runs the job with a deadline", func(t *testing.T) {
		ran := make(chan time.Time, 1)
		job := jobFunc(func(ctx context.Context) error {
			deadline, _ := ctx.Deadline()
			ran <- deadline
			return nil
		})

		c, err := batch.NewScheduler("@every 1s", time.Minute, "status_sweep", job, discardLogger)
		require.NoError(t, err)
		c.Start()
		defer c.Stop()

		select {
		case deadline := <-ran:
			assert.False(t, deadline.IsZero())
		case <-time.After(3 * time.Second):
			t.Fatal("job did not run")
		}
	})
}
