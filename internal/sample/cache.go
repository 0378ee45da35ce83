package sample

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
)

// Cache holds the sample answers of one session. Concurrent requests for
// the same question share a single fetch, and only successful results are
// kept.
//
// A fetch is detached from the caller's context: a caller that gives up
// (for example because the user moved to another question) stops waiting,
// but the fetch runs to completion and its result is cached.
type Cache struct {
	fetcher Fetcher
	timeout time.Duration
	log     *zap.Logger

	group singleflight.Group

	mu      sync.Mutex
	answers map[int]string
}

// NewCache returns an empty cache. A nil fetcher makes every Get fail
// with ErrUnavailable.
func NewCache(fetcher Fetcher, timeout time.Duration, log *zap.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		timeout: timeout,
		log:     logger.OrNop(log),
		answers: make(map[int]string),
	}
}

// Available reports whether a fetcher is configured.
func (c *Cache) Available() bool {
	return c != nil && c.fetcher != nil
}

// Cached returns the stored answer for q, if any.
func (c *Cache) Cached(q question.Question) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[q.ID]
	return a, ok
}

// Get returns the sample answer for q, fetching it at most once at a time.
func (c *Cache) Get(ctx context.Context, q question.Question) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}
	if a, ok := c.Cached(q); ok {
		return a, nil
	}

	ch := c.group.DoChan(strconv.Itoa(q.ID), func() (any, error) {
		if a, ok := c.Cached(q); ok {
			return a, nil
		}
		return c.fetch(ctx, q)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) fetch(ctx context.Context, q question.Question) (string, error) {
	fctx := context.WithoutCancel(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(fctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	a, err := c.fetcher.GenerateSampleAnswer(fctx, q.Text, q.Category)
	if err == nil && a == "" {
		err = ErrEmptySample
	}
	if err != nil {
		c.log.Warn("sample answer fetch failed",
			zap.Int("question_id", q.ID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", err
	}

	c.mu.Lock()
	c.answers[q.ID] = a
	c.mu.Unlock()

	c.log.Debug("sample answer fetched",
		zap.Int("question_id", q.ID),
		zap.Duration("elapsed", time.Since(start)))
	return a, nil
}
