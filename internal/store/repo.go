package store

import (
	"context"
	"time"

	"github.com/abhisek/mockprep/internal/question"
)

// StatusCompleted is the only status a stored assessment carries.
const StatusCompleted = "completed"

// AssessmentRecord is a completed assessment as stored.
type AssessmentRecord struct {
	ID                 int64               `json:"id"`
	SessionID          string              `json:"session_id"`
	UserID             string              `json:"user_id"`
	Type               question.Category   `json:"type"`
	Questions          []question.Question `json:"questions"`
	Answers            []string            `json:"answers"`
	Score              int                 `json:"score"`
	DurationMinutes    int                 `json:"duration_minutes"`
	AttemptedQuestions int                 `json:"attempted_questions"`
	TotalQuestions     int                 `json:"total_questions"`
	Status             string              `json:"status"`
	StartedAt          time.Time           `json:"started_at"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ListOpts filters ListByUser.
type ListOpts struct {
	Type  question.Category // empty = all categories
	Limit int               // 0 = unlimited
}

// AssessmentRepo stores and retrieves completed assessments.
type AssessmentRepo interface {
	// Persist stores rec and returns its id. Persisting a record whose
	// SessionID already exists returns the existing id and changes nothing.
	Persist(ctx context.Context, rec *AssessmentRecord) (int64, error)

	// Get returns the assessment with the given id, or ErrNotFound.
	Get(ctx context.Context, id int64) (*AssessmentRecord, error)

	// ListByUser returns the user's assessments, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]AssessmentRecord, error)
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request.
type LLMEvent struct {
	LLMRequestEventData
	ID        int64
	Sequence  int64
	Timestamp time.Time
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string
}

// EventRepo provides append access to the LLM event log.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
