package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/speech"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/telemetry"
)

type fakeStore struct {
	mu      sync.Mutex
	calls   int
	fail    error
	records []*store.AssessmentRecord
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeStore) Persist(ctx context.Context, rec *store.AssessmentRecord) (int64, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail != nil {
		return 0, f.fail
	}
	f.records = append(f.records, rec)
	return 42, nil
}

func (f *fakeStore) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *fakeStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	err     error
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeFetcher) GenerateSampleAnswer(ctx context.Context, text string, _ question.Category) (string, error) {
	f.mu.Lock()
	f.calls++
	err, entered, gate := f.err, f.entered, f.gate
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "sample: " + text, nil
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMetrics struct {
	mu            sync.Mutex
	started       int
	completed     []telemetry.Assessment
	persistFailed int
	samples       []bool
}

var _ telemetry.Recorder = (*fakeMetrics)(nil)

func (m *fakeMetrics) AssessmentStarted(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
}

func (m *fakeMetrics) AssessmentCompleted(_ context.Context, a telemetry.Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, a)
}

func (m *fakeMetrics) PersistFailed(context.Context, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistFailed++
}

func (m *fakeMetrics) SampleFetched(_ context.Context, _ string, ok bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, ok)
}

func (m *fakeMetrics) Close(context.Context) error { return nil }

type failingQuestions struct{}

func (failingQuestions) Questions(question.Category) ([]question.Question, error) {
	return nil, question.ErrNoQuestions
}

// fallbackQuestions serves the technical set whatever is requested.
type fallbackQuestions struct{}

func (fallbackQuestions) Questions(question.Category) ([]question.Question, error) {
	return question.Builtin().Questions(question.CategoryTechnical)
}

type harness struct {
	store     *fakeStore
	samples   *fakeFetcher
	clock     *fakeClock
	dictation *speech.ScriptedDictation
	speaker   *speech.RecordingSpeaker
	metrics   *fakeMetrics
}

func newHarness() *harness {
	return &harness{
		store:     &fakeStore{},
		samples:   &fakeFetcher{},
		clock:     &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		dictation: speech.NewScriptedDictation(),
		speaker:   &speech.RecordingSpeaker{},
		metrics:   &fakeMetrics{},
	}
}

func (h *harness) options() Options {
	return Options{
		Questions: question.Builtin(),
		Store:     h.store,
		Identity:  identity.NewStatic("user-1", "user@example.com"),
		Samples:   h.samples,
		Dictation: h.dictation,
		Speaker:   h.speaker,
		Telemetry: h.metrics,
		Now:       h.clock.Now,
		NewID:     func() string { return "session-1" },
	}
}

func (h *harness) start(t *testing.T, cat question.Category) *Controller {
	t.Helper()
	c, err := Start(context.Background(), h.options(), cat)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
