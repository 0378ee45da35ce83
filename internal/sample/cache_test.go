package sample

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/question"
)

type gatedFetcher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	sawCtx  chan context.Context
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{release: make(chan struct{}), sawCtx: make(chan context.Context, 8)}
}

func (f *gatedFetcher) GenerateSampleAnswer(ctx context.Context, text string, _ question.Category) (string, error) {
	f.calls.Add(1)
	f.sawCtx <- ctx
	select {
	case <-f.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return "sample for " + text, nil
}

var q1 = question.Question{ID: 1, Text: "Describe yourself", Category: question.CategoryBehavioral}

func TestCache_CoalescesConcurrentRequests(t *testing.T) {
	f := newGatedFetcher()
	c := NewCache(f, 0, nil)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := c.Get(context.Background(), q1)
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}

	<-f.sawCtx
	time.Sleep(10 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, r := range results {
		assert.Equal(t, "sample for Describe yourself", r)
	}

	a, ok := c.Cached(q1)
	assert.True(t, ok)
	assert.Equal(t, "sample for Describe yourself", a)

	_, err := c.Get(context.Background(), q1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestCache_CallerCancelDoesNotCancelFetch(t *testing.T) {
	f := newGatedFetcher()
	c := NewCache(f, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, q1)
		errCh <- err
	}()

	fetchCtx := <-f.sawCtx
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.NoError(t, fetchCtx.Err())

	close(f.release)
	assert.Eventually(t, func() bool {
		_, ok := c.Cached(q1)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestCache_FailureIsNotCached(t *testing.T) {
	f := newGatedFetcher()
	f.err = errors.New("model down")
	close(f.release)
	c := NewCache(f, 0, nil)

	_, err := c.Get(context.Background(), q1)
	assert.EqualError(t, err, "model down")
	_, ok := c.Cached(q1)
	assert.False(t, ok)

	f.err = nil
	a, err := c.Get(context.Background(), q1)
	require.NoError(t, err)
	assert.Equal(t, "sample for Describe yourself", a)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestCache_Timeout(t *testing.T) {
	f := newGatedFetcher()
	c := NewCache(f, 20*time.Millisecond, nil)

	_, err := c.Get(context.Background(), q1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_Unavailable(t *testing.T) {
	c := NewCache(nil, 0, nil)
	assert.False(t, c.Available())

	_, err := c.Get(context.Background(), q1)
	assert.ErrorIs(t, err, ErrUnavailable)
}
