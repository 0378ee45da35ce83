package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/question"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(t *testing.T, sessionID, userID string, cat question.Category, created time.Time) *AssessmentRecord {
	t.Helper()
	qs, err := question.Builtin().Questions(cat)
	require.NoError(t, err)
	answers := make([]string, len(qs))
	answers[0] = "I implemented the solution"
	return &AssessmentRecord{
		SessionID:          sessionID,
		UserID:             userID,
		Type:               cat,
		Questions:          qs,
		Answers:            answers,
		Score:              30,
		DurationMinutes:    4,
		AttemptedQuestions: 1,
		TotalQuestions:     len(qs),
		Status:             StatusCompleted,
		StartedAt:          created.Add(-4 * time.Minute),
		CreatedAt:          created,
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got))
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := t.TempDir() + "/mockprep.db"
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestAssessmentPersistAndGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := testRecord(t, "sess-1", "user-1", question.CategoryBehavioral, now)

	id, err := repo.Persist(ctx, rec)
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, question.CategoryBehavioral, got.Type)
	assert.Equal(t, rec.Questions, got.Questions)
	assert.Equal(t, rec.Answers, got.Answers)
	assert.Equal(t, 30, got.Score)
	assert.Equal(t, 4, got.DurationMinutes)
	assert.Equal(t, 1, got.AttemptedQuestions)
	assert.Equal(t, 5, got.TotalQuestions)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))
}

func TestAssessmentPersist_SameSessionReturnsSameID(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	rec := testRecord(t, "sess-dup", "user-1", question.CategoryTechnical, time.Now())
	first, err := repo.Persist(ctx, rec)
	require.NoError(t, err)

	rec.Score = 99
	second, err := repo.Persist(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	got, err := repo.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Score)

	all, err := repo.ListByUser(ctx, "user-1", ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAssessmentPersist_Rejects(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()

	rec := testRecord(t, "", "user-1", question.CategoryTechnical, time.Now())
	_, err := repo.Persist(context.Background(), rec)
	assert.Error(t, err)

	rec = testRecord(t, "sess-x", "user-1", question.CategoryTechnical, time.Now())
	rec.Answers = rec.Answers[:2]
	_, err = repo.Persist(context.Background(), rec)
	assert.ErrorContains(t, err, "5 questions but 2 answers")
}

func TestAssessmentGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.AssessmentRepo().Get(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAssessmentListByUser(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, cat := range []question.Category{question.CategoryTechnical, question.CategoryBehavioral, question.CategoryTechnical} {
		_, err := repo.Persist(ctx, testRecord(t, fmt.Sprintf("s%d", i), "alice", cat, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	_, err := repo.Persist(ctx, testRecord(t, "other", "bob", question.CategoryManagerial, base))
	require.NoError(t, err)

	all, err := repo.ListByUser(ctx, "alice", ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "s2", all[0].SessionID)
	assert.Equal(t, "s1", all[1].SessionID)
	assert.Equal(t, "s0", all[2].SessionID)

	tech, err := repo.ListByUser(ctx, "alice", ListOpts{Type: question.CategoryTechnical})
	require.NoError(t, err)
	require.Len(t, tech, 2)
	assert.Equal(t, "s2", tech[0].SessionID)

	limited, err := repo.ListByUser(ctx, "alice", ListOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	none, err := repo.ListByUser(ctx, "carol", ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "sample-answer",
		InputTokens: 10, OutputTokens: 20, LatencyMs: 300, Success: true,
		RequestBody: "[user]\nq", ResponseBody: `{"sample_answer":"a"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "review-sample",
		Success: false, ErrorMessage: "rate limited",
	}))

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "review-sample", events[0].Purpose)
	assert.False(t, events[0].Success)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)

	samples, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "sample-answer"})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.True(t, samples[0].Success)
	assert.Equal(t, 20, samples[0].OutputTokens)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: events[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)

	got, err := repo.GetLLMEvent(ctx, samples[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"sample_answer":"a"}`, got.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	empty, err := repo.UsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, e := range []LLMRequestEventData{
		{Model: "gpt-4o-mini", Purpose: "sample-answer", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Model: "gpt-4o-mini", Purpose: "sample-answer", InputTokens: 120, OutputTokens: 70, LatencyMs: 400, Success: true},
		{Model: "gemini-flash", Purpose: "review-sample", InputTokens: 80, OutputTokens: 40, LatencyMs: 100, Success: true},
	} {
		e.Provider = "test"
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	byPurpose, err := repo.UsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, Usage{Key: "sample-answer", Calls: 2, InputTokens: 220, OutputTokens: 120, AvgLatencyMs: 300}, byPurpose[0])
	assert.Equal(t, "review-sample", byPurpose[1].Key)

	byModel, err := repo.UsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gpt-4o-mini", byModel[0].Key)
	assert.Equal(t, 1, byModel[1].Calls)
	assert.Equal(t, 80, byModel[1].InputTokens)
}
