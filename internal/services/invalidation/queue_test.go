package invalidation_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wayfarer/content-service/internal/services/invalidation"
)

func TestRetryQueue_ProcessesSteps(t *testing.T) {
	var processed atomic.Int32
	q := invalidation.NewRetryQueue(4, func(ctx context.Context, step invalidation.Step) error {
		processed.Add(1)
		return nil
	})
	q.Start(2)
	defer q.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, q.Enqueue(invalidation.Step{Kind: invalidation.StepKey, Target: "post:1"}))
	}

	assert.Eventually(t, func() bool { return processed.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestRetryQueue_DropsWhenFull(t *testing.T) {
	q := invalidation.NewRetryQueue(1, func(ctx context.Context, step invalidation.Step) error { return nil })

	assert.True(t, q.Enqueue(invalidation.Step{Kind: invalidation.StepKey, Target: "a"}))
	assert.False(t, q.Enqueue(invalidation.Step{Kind: invalidation.StepKey, Target: "b"}))
	assert.Equal(t, 1, q.Len())
}

func TestRetryQueue_StopIsIdempotent(t *testing.T) {
	q := invalidation.NewRetryQueue(1, func(ctx context.Context, step invalidation.Step) error { return nil })
	q.Start(1)

	q.Stop()
	q.Stop()

	assert.False(t, q.Enqueue(invalidation.Step{Kind: invalidation.StepPattern, Target: "posts:*"}))
}
