package history

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/store"
)

type purposeFetcher struct {
	mu       sync.Mutex
	calls    int
	purposes []string
}

func (f *purposeFetcher) GenerateSampleAnswer(ctx context.Context, text string, _ question.Category) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.purposes = append(f.purposes, llm.PurposeFrom(ctx))
	return "model answer for " + text, nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo store.AssessmentRepo, session, user string, cat question.Category, score int, at time.Time, answers ...string) int64 {
	t.Helper()
	qs, err := question.Builtin().Questions(cat)
	require.NoError(t, err)
	all := make([]string, len(qs))
	copy(all, answers)
	id, err := repo.Persist(context.Background(), &store.AssessmentRecord{
		SessionID:          session,
		UserID:             user,
		Type:               cat,
		Questions:          qs,
		Answers:            all,
		Score:              score,
		DurationMinutes:    3,
		AttemptedQuestions: scoring.Attempted(all),
		TotalQuestions:     len(qs),
		Status:             store.StatusCompleted,
		StartedAt:          at.Add(-3 * time.Minute),
		CreatedAt:          at,
	})
	require.NoError(t, err)
	return id
}

func TestService_List(t *testing.T) {
	s := openStore(t)
	repo := s.AssessmentRepo()
	seed(t, repo, "s1", "u1", question.CategoryTechnical, 40, base)
	seed(t, repo, "s2", "u1", question.CategoryBehavioral, 85, base.Add(time.Hour))
	seed(t, repo, "s3", "u2", question.CategoryTechnical, 90, base.Add(2*time.Hour))

	svc := NewService(repo, nil, 0, nil)
	ctx := context.Background()

	entries, err := svc.List(ctx, "u1", "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].SessionID)
	assert.Equal(t, scoring.RatingHigh, entries[0].Rating)
	assert.Equal(t, "s1", entries[1].SessionID)
	assert.Equal(t, scoring.RatingLow, entries[1].Rating)
	assert.True(t, entries[1].CompletedAt.Equal(base))

	entries, err = svc.List(ctx, "u1", question.CategoryTechnical, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "s1", entries[0].SessionID)

	entries, err = svc.List(ctx, "nobody", "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Detail(t *testing.T) {
	s := openStore(t)
	answer := "In that situation I took action and the result was good, for example faster builds."
	id := seed(t, s.AssessmentRepo(), "s1", "u1", question.CategoryBehavioral, 30, base, answer)

	svc := NewService(s.AssessmentRepo(), nil, 0, nil)
	d, err := svc.Detail(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, id, d.ID)
	require.Len(t, d.Items, question.QuestionsPerSession)

	want := scoring.New(scoring.FlowReview).Validate(answer, question.CategoryBehavioral)
	first := d.Items[0]
	assert.True(t, first.Answered)
	assert.Equal(t, want.Score, first.Score)
	assert.Equal(t, want.Feedback, first.Feedback)
	assert.Equal(t, scoring.RatingFor(want.Score), first.Rating)

	second := d.Items[1]
	assert.False(t, second.Answered)
	assert.Equal(t, 0, second.Score)
	assert.Equal(t, unansweredFeedback, second.Feedback)
	assert.Equal(t, 1, second.Index)
}

func TestService_DetailNotFound(t *testing.T) {
	s := openStore(t)
	svc := NewService(s.AssessmentRepo(), nil, 0, nil)

	_, err := svc.Detail(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.SampleAnswer(context.Background(), 999, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SampleAnswer(t *testing.T) {
	s := openStore(t)
	id := seed(t, s.AssessmentRepo(), "s1", "u1", question.CategoryTechnical, 30, base)

	f := &purposeFetcher{}
	svc := NewService(s.AssessmentRepo(), f, time.Second, nil)
	require.True(t, svc.SamplesAvailable())
	ctx := context.Background()

	d, err := svc.Detail(ctx, id)
	require.NoError(t, err)

	got, err := svc.SampleAnswer(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, "model answer for "+d.Items[2].Question.Text, got)

	again, err := svc.SampleAnswer(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, []string{llm.PurposeReview}, f.purposes)

	_, err = svc.SampleAnswer(ctx, id, 5)
	assert.ErrorIs(t, err, ErrQuestionIndex)
}

func TestService_SampleCachesAreBounded(t *testing.T) {
	s := openStore(t)
	repo := s.AssessmentRepo()
	ids := []int64{
		seed(t, repo, "s1", "u1", question.CategoryTechnical, 30, base),
		seed(t, repo, "s2", "u1", question.CategoryBehavioral, 30, base.Add(time.Minute)),
		seed(t, repo, "s3", "u1", question.CategoryManagerial, 30, base.Add(2*time.Minute)),
	}

	f := &purposeFetcher{}
	svc := NewService(repo, f, time.Second, nil)
	svc.caches = lru.New(2)
	ctx := context.Background()

	for _, id := range ids {
		_, err := svc.SampleAnswer(ctx, id, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, svc.caches.Len())
	assert.Equal(t, 3, f.calls)

	// The most recent assessment is still cached; the oldest was evicted.
	_, err := svc.SampleAnswer(ctx, ids[2], 0)
	require.NoError(t, err)
	assert.Equal(t, 3, f.calls)

	_, err = svc.SampleAnswer(ctx, ids[0], 0)
	require.NoError(t, err)
	assert.Equal(t, 4, f.calls)
	assert.Equal(t, 2, svc.caches.Len())
}

func TestService_SampleAnswerUnavailable(t *testing.T) {
	s := openStore(t)
	id := seed(t, s.AssessmentRepo(), "s1", "u1", question.CategoryTechnical, 30, base)

	svc := NewService(s.AssessmentRepo(), nil, 0, nil)
	assert.False(t, svc.SamplesAvailable())
	_, err := svc.SampleAnswer(context.Background(), id, 0)
	assert.Error(t, err)
}

func TestService_Stats(t *testing.T) {
	s := openStore(t)
	repo := s.AssessmentRepo()
	seed(t, repo, "s1", "u1", question.CategoryManagerial, 50, base)
	seed(t, repo, "s2", "u1", question.CategoryTechnical, 40, base.Add(time.Hour))
	seed(t, repo, "s3", "u1", question.CategoryTechnical, 71, base.Add(2*time.Hour))
	seed(t, repo, "s4", "u2", question.CategoryTechnical, 100, base)

	svc := NewService(repo, nil, 0, nil)
	st, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 54, st.Average)
	assert.Equal(t, 71, st.Best)
	require.Len(t, st.Categories, 2)

	tech := st.Categories[0]
	assert.Equal(t, question.CategoryTechnical, tech.Category)
	assert.Equal(t, 2, tech.Count)
	assert.Equal(t, 56, tech.Average)
	assert.Equal(t, 71, tech.Best)
	assert.True(t, tech.Latest.Equal(base.Add(2*time.Hour)))

	mgr := st.Categories[1]
	assert.Equal(t, question.CategoryManagerial, mgr.Category)
	assert.Equal(t, 1, mgr.Count)
	assert.Equal(t, 50, mgr.Average)
}

func TestService_StatsEmpty(t *testing.T) {
	s := openStore(t)
	svc := NewService(s.AssessmentRepo(), nil, 0, nil)

	st, err := svc.Stats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Total)
	assert.Empty(t, st.Categories)
	assert.NotNil(t, st.Categories)
}
