// Package session drives one assessment attempt: the question list, the
// per-question interaction state, and the final scoring and persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/speech"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/telemetry"
)

// Persister stores a completed assessment and returns its id.
type Persister interface {
	Persist(ctx context.Context, rec *store.AssessmentRecord) (int64, error)
}

// Options wires a Controller to its collaborators. Questions, Store and
// Identity are required; the rest are optional.
type Options struct {
	Questions question.Provider
	Store     Persister
	Identity  identity.Provider

	// Samples generates sample answers. Nil makes them unavailable.
	Samples       sample.Fetcher
	SampleTimeout time.Duration

	// Dictation and Speaker are the environment's speech capabilities.
	// Nil means not supported.
	Dictation speech.Dictation
	Speaker   speech.Speaker

	// Scorer grades validations. The zero value uses the live keywords.
	Scorer    scoring.Scorer
	Telemetry telemetry.Recorder
	Logger    *zap.Logger

	// OnChange is called after any state change, from any goroutine.
	OnChange func()

	Now   func() time.Time
	NewID func() string
}

// Controller is the only mutator of an assessment. Answers change through
// RecordAnswer, which the current QuestionState calls on submit.
type Controller struct {
	store    Persister
	samples  *sample.Cache
	deps     questionDeps
	caps     speech.Capabilities
	metrics  telemetry.Recorder
	log      *zap.Logger
	now      func() time.Time
	finalize singleflight.Group

	mu      sync.Mutex
	a       assessment
	current *QuestionState
}

// Start begins an assessment for the signed-in user. An unknown category
// silently falls back to the provider's default set.
func Start(ctx context.Context, opts Options, category question.Category) (*Controller, error) {
	if opts.Questions == nil || opts.Store == nil {
		return nil, errors.New("start assessment: questions and store are required")
	}

	user, err := currentUser(ctx, opts.Identity)
	if err != nil {
		return nil, err
	}

	qs, err := opts.Questions.Questions(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuestionsUnavailable, err)
	}
	if len(qs) == 0 {
		return nil, ErrQuestionsUnavailable
	}

	// The provider may fall back to another set; the session takes the
	// category of what was served.
	served := qs[0].Category

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	metrics := opts.Telemetry
	if metrics == nil {
		metrics = telemetry.NewNoOp()
	}

	sessionID := newID()
	log := logger.With(opts.Logger, logger.SessionFields(sessionID, user.ID, string(served))...)

	var fetcher sample.Fetcher
	if opts.Samples != nil {
		fetcher = &timedFetcher{next: opts.Samples, metrics: metrics}
	}
	samples := sample.NewCache(fetcher, opts.SampleTimeout, log)

	c := &Controller{
		store:   opts.Store,
		samples: samples,
		caps:    speech.Detect(opts.Dictation, opts.Speaker),
		metrics: metrics,
		log:     log,
		now:     now,
		a: assessment{
			sessionID: sessionID,
			userID:    user.ID,
			category:  served,
			questions: qs,
			answers:   make([]string, len(qs)),
			startedAt: now(),
			status:    StatusInProgress,
		},
	}
	c.deps = questionDeps{
		samples:   samples,
		dictation: opts.Dictation,
		speaker:   opts.Speaker,
		scorer:    opts.Scorer,
		log:       log,
		onChange:  opts.OnChange,
	}
	c.current = c.newQuestionLocked(0)

	if served != category {
		log.Info("category unavailable, serving default", zap.String("requested", string(category)))
	}
	log.Info("assessment started", zap.Int("questions", len(qs)))
	metrics.AssessmentStarted(ctx, string(served))
	return c, nil
}

func currentUser(ctx context.Context, p identity.Provider) (*identity.User, error) {
	if p == nil {
		return nil, ErrNotAuthenticated
	}
	u, err := p.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	if u == nil || u.ID == "" {
		return nil, ErrNotAuthenticated
	}
	return u, nil
}

func (c *Controller) SessionID() string { return c.a.sessionID }

// Capabilities reports which speech features this session can use.
func (c *Controller) Capabilities() speech.Capabilities { return c.caps }

// SamplesAvailable reports whether sample answers can be requested.
func (c *Controller) SamplesAvailable() bool { return c.samples.Available() }

// Snapshot returns a copy of the current assessment state.
func (c *Controller) Snapshot() Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.a.snapshot()
}

// Current returns the interaction state of the current question. It is
// replaced whenever the position changes.
func (c *Controller) Current() *QuestionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Result returns the finalize result, or nil while in progress.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.a.result == nil {
		return nil
	}
	r := *c.a.result
	return &r
}

// RecordAnswer writes the committed answer at index. It fails with
// ErrSessionCompleted once the session is completed or being finalized.
func (c *Controller) RecordAnswer(index int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.a.status == StatusCompleted || c.a.finalizing {
		return ErrSessionCompleted
	}
	if index < 0 || index >= len(c.a.answers) {
		return ErrIndexOutOfRange
	}
	c.a.answers[index] = text
	return nil
}

// Advance moves to the next question. On the last question it finalizes
// instead and returns the result; otherwise the result is nil.
func (c *Controller) Advance(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.a.status == StatusCompleted {
		r := *c.a.result
		c.mu.Unlock()
		return &r, nil
	}
	if c.a.currentIndex >= len(c.a.questions)-1 {
		c.mu.Unlock()
		return c.Finalize(ctx)
	}
	prev := c.moveLocked(c.a.currentIndex + 1)
	c.mu.Unlock()

	prev.close()
	c.log.Debug("advanced", zap.Int("index", prev.index+1))
	c.notify()
	return nil, nil
}

// Previous moves back one question. The new state starts in editing with
// the committed answer as its draft.
func (c *Controller) Previous() error {
	c.mu.Lock()
	if c.a.status == StatusCompleted {
		c.mu.Unlock()
		return ErrSessionCompleted
	}
	if c.a.currentIndex == 0 {
		c.mu.Unlock()
		return ErrIndexOutOfRange
	}
	prev := c.moveLocked(c.a.currentIndex - 1)
	c.mu.Unlock()

	prev.close()
	c.notify()
	return nil
}

func (c *Controller) moveLocked(index int) *QuestionState {
	prev := c.current
	c.a.currentIndex = index
	c.current = c.newQuestionLocked(index)
	return prev
}

func (c *Controller) newQuestionLocked(index int) *QuestionState {
	return newQuestionState(index, c.a.questions[index], c.a.answers[index], c.deps, c.RecordAnswer)
}

// Finalize scores and persists the assessment. It may be called before
// every question is answered. Concurrent calls share one attempt, and once
// completed it returns the stored result without persisting again.
//
// If the store fails the session stays in progress and a *FinalizeError is
// returned; a retry reuses the duration computed by the first attempt.
func (c *Controller) Finalize(ctx context.Context) (*Result, error) {
	v, err, _ := c.finalize.Do(c.a.sessionID, func() (any, error) {
		return c.doFinalize(ctx)
	})
	if err != nil {
		return nil, err
	}
	r := *v.(*Result)
	return &r, nil
}

func (c *Controller) doFinalize(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.a.result != nil {
		r := *c.a.result
		c.mu.Unlock()
		return &r, nil
	}
	if c.a.duration == nil {
		d := durationMinutes(c.now().Sub(c.a.startedAt))
		c.a.duration = &d
	}
	answers := make([]string, len(c.a.answers))
	copy(answers, c.a.answers)
	rec := &store.AssessmentRecord{
		SessionID:          c.a.sessionID,
		UserID:             c.a.userID,
		Type:               c.a.category,
		Questions:          c.a.questions,
		Answers:            answers,
		Score:              scoring.Aggregate(answers, len(c.a.questions)),
		DurationMinutes:    *c.a.duration,
		AttemptedQuestions: scoring.Attempted(answers),
		TotalQuestions:     len(c.a.questions),
		Status:             store.StatusCompleted,
		StartedAt:          c.a.startedAt,
	}
	c.a.finalizing = true
	c.mu.Unlock()

	id, err := c.store.Persist(ctx, rec)
	if err != nil {
		c.mu.Lock()
		c.a.finalizing = false
		c.mu.Unlock()
		c.log.Error("failed to persist assessment", zap.Error(err))
		c.metrics.PersistFailed(ctx, string(rec.Type))
		return nil, &FinalizeError{Retryable: true, Err: err}
	}

	res := &Result{
		ID:                 id,
		SessionID:          rec.SessionID,
		Score:              rec.Score,
		DurationMinutes:    rec.DurationMinutes,
		AttemptedQuestions: rec.AttemptedQuestions,
		TotalQuestions:     rec.TotalQuestions,
	}

	c.mu.Lock()
	c.a.result = res
	c.a.status = StatusCompleted
	c.a.finalizing = false
	cur := c.current
	c.mu.Unlock()

	cur.close()

	c.log.Info("assessment completed",
		zap.Int64("id", id),
		zap.Int("score", res.Score),
		zap.Int("attempted", res.AttemptedQuestions),
		zap.Int("duration_minutes", res.DurationMinutes))
	c.metrics.AssessmentCompleted(ctx, telemetry.Assessment{
		Category:        string(rec.Type),
		Score:           res.Score,
		Attempted:       res.AttemptedQuestions,
		Total:           res.TotalQuestions,
		DurationMinutes: res.DurationMinutes,
	})
	c.notify()

	r := *res
	return &r, nil
}

func durationMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(math.Round(d.Minutes()))
}

// Close cancels dictation and playback of the current question.
func (c *Controller) Close() {
	c.Current().close()
}

func (c *Controller) notify() {
	if c.deps.onChange != nil {
		c.deps.onChange()
	}
}

// timedFetcher reports every sample fetch to telemetry.
type timedFetcher struct {
	next    sample.Fetcher
	metrics telemetry.Recorder
}

func (f *timedFetcher) GenerateSampleAnswer(ctx context.Context, text string, category question.Category) (string, error) {
	start := time.Now()
	a, err := f.next.GenerateSampleAnswer(ctx, text, category)
	f.metrics.SampleFetched(ctx, string(category), err == nil && a != "", time.Since(start))
	return a, err
}
