// Package history presents a user's stored assessments: listings, a
// per-question review of one attempt, and aggregate statistics.
package history

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/store"
)

// ErrNotFound is returned for an unknown assessment id.
var ErrNotFound = errors.New("assessment not found")

// ErrQuestionIndex is returned for a question index outside an assessment.
var ErrQuestionIndex = errors.New("question index out of range")

const unansweredFeedback = "No answer was provided for this question."

// maxCachedAssessments bounds how many assessments keep generated sample
// answers in memory.
const maxCachedAssessments = 64

// Entry is one row of a user's history.
type Entry struct {
	ID                 int64             `json:"id"`
	SessionID          string            `json:"session_id"`
	Type               question.Category `json:"type"`
	Score              int               `json:"score"`
	Rating             scoring.Rating    `json:"rating"`
	AttemptedQuestions int               `json:"attempted_questions"`
	TotalQuestions     int               `json:"total_questions"`
	DurationMinutes    int               `json:"duration_minutes"`
	StartedAt          time.Time         `json:"started_at"`
	CompletedAt        time.Time         `json:"completed_at"`
}

// ReviewItem is one question of a stored assessment, rescored for review.
type ReviewItem struct {
	Index    int               `json:"index"`
	Question question.Question `json:"question"`
	Answer   string            `json:"answer"`
	Answered bool              `json:"answered"`
	Score    int               `json:"score"`
	Rating   scoring.Rating    `json:"rating"`
	Feedback string            `json:"feedback"`
}

// Detail is a stored assessment with its review.
type Detail struct {
	Entry
	UserID string       `json:"user_id"`
	Items  []ReviewItem `json:"items"`
}

// CategoryStats aggregates one category.
type CategoryStats struct {
	Category question.Category `json:"category"`
	Count    int               `json:"count"`
	Average  int               `json:"average"`
	Best     int               `json:"best"`
	Latest   time.Time         `json:"latest"`
}

// Stats aggregates a user's history.
type Stats struct {
	Total      int             `json:"total"`
	Average    int             `json:"average"`
	Best       int             `json:"best"`
	Categories []CategoryStats `json:"categories"`
}

// Service reads the assessment store. Sample answers are generated on
// demand and kept per assessment for the life of the Service.
type Service struct {
	repo    store.AssessmentRepo
	fetcher sample.Fetcher
	timeout time.Duration
	scorer  scoring.Scorer
	log     *zap.Logger

	// caches holds a *sample.Cache per recently reviewed assessment.
	mu     sync.Mutex
	caches *lru.Cache
}

// NewService returns a Service over repo. fetcher may be nil.
func NewService(repo store.AssessmentRepo, fetcher sample.Fetcher, timeout time.Duration, log *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		fetcher: fetcher,
		timeout: timeout,
		scorer:  scoring.New(scoring.FlowReview),
		log:     logger.OrNop(log),
		caches:  lru.New(maxCachedAssessments),
	}
}

// List returns the user's assessments newest first. An empty category
// lists all of them; limit 0 means no limit.
func (s *Service) List(ctx context.Context, userID string, category question.Category, limit int) ([]Entry, error) {
	recs, err := s.repo.ListByUser(ctx, userID, store.ListOpts{Type: category, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]Entry, len(recs))
	for i := range recs {
		out[i] = entryFrom(&recs[i])
	}
	return out, nil
}

// Detail loads one assessment and scores each answer with the review
// keywords.
func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Entry:  entryFrom(rec),
		UserID: rec.UserID,
		Items:  make([]ReviewItem, len(rec.Questions)),
	}
	for i, q := range rec.Questions {
		var answer string
		if i < len(rec.Answers) {
			answer = rec.Answers[i]
		}
		d.Items[i] = s.review(i, q, answer)
	}
	return d, nil
}

func (s *Service) review(i int, q question.Question, answer string) ReviewItem {
	item := ReviewItem{Index: i, Question: q, Answer: answer}
	if strings.TrimSpace(answer) == "" {
		item.Rating = scoring.RatingFor(0)
		item.Feedback = unansweredFeedback
		return item
	}
	v := s.scorer.Validate(answer, q.Category)
	item.Answered = true
	item.Score = v.Score
	item.Feedback = v.Feedback
	item.Rating = scoring.RatingFor(v.Score)
	return item
}

// SampleAnswer returns the sample answer for question index of an
// assessment, generating it the first time.
func (s *Service) SampleAnswer(ctx context.Context, id int64, index int) (string, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(rec.Questions) {
		return "", ErrQuestionIndex
	}
	return s.cache(id).Get(llm.WithPurpose(ctx, llm.PurposeReview), rec.Questions[index])
}

// SamplesAvailable reports whether SampleAnswer can generate answers.
func (s *Service) SamplesAvailable() bool {
	return s.fetcher != nil
}

func (s *Service) cache(id int64) *sample.Cache {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches.Get(id); ok {
		return c.(*sample.Cache)
	}
	c := sample.NewCache(s.fetcher, s.timeout, s.log.With(zap.Int64("assessment_id", id)))
	s.caches.Add(id, c)
	return c
}

func (s *Service) get(ctx context.Context, id int64) (*store.AssessmentRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment %d: %w", id, err)
	}
	return rec, nil
}

// Stats aggregates every assessment of the user. Categories are listed in
// display order and only when they have at least one attempt.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	recs, err := s.repo.ListByUser(ctx, userID, store.ListOpts{})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}

	st := &Stats{Total: len(recs), Categories: []CategoryStats{}}
	if len(recs) == 0 {
		return st, nil
	}

	type acc struct {
		count, sum, best int
		latest           time.Time
	}
	by := make(map[question.Category]*acc)
	sum := 0
	for _, r := range recs {
		sum += r.Score
		st.Best = max(st.Best, r.Score)

		a, ok := by[r.Type]
		if !ok {
			a = &acc{}
			by[r.Type] = a
		}
		a.count++
		a.sum += r.Score
		a.best = max(a.best, r.Score)
		if r.CreatedAt.After(a.latest) {
			a.latest = r.CreatedAt
		}
	}
	st.Average = mean(sum, len(recs))

	for cat, a := range by {
		st.Categories = append(st.Categories, CategoryStats{
			Category: cat,
			Count:    a.count,
			Average:  mean(a.sum, a.count),
			Best:     a.best,
			Latest:   a.latest,
		})
	}
	sort.Slice(st.Categories, func(i, j int) bool {
		return categoryOrder(st.Categories[i].Category) < categoryOrder(st.Categories[j].Category)
	})
	return st, nil
}

func categoryOrder(c question.Category) int {
	for i, known := range question.Categories() {
		if c == known {
			return i
		}
	}
	return len(question.Categories())
}

func mean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func entryFrom(r *store.AssessmentRecord) Entry {
	return Entry{
		ID:                 r.ID,
		SessionID:          r.SessionID,
		Type:               r.Type,
		Score:              r.Score,
		Rating:             scoring.RatingFor(r.Score),
		AttemptedQuestions: r.AttemptedQuestions,
		TotalQuestions:     r.TotalQuestions,
		DurationMinutes:    r.DurationMinutes,
		StartedAt:          r.StartedAt,
		CompletedAt:        r.CreatedAt,
	}
}
