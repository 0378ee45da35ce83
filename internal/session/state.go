package session

import (
	"time"

	"github.com/abhisek/mockprep/internal/question"
)

// Status is the lifecycle state of an assessment.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Result is what finalize produced. It is set once and never changes.
type Result struct {
	ID                 int64
	SessionID          string
	Score              int
	DurationMinutes    int
	AttemptedQuestions int
	TotalQuestions     int
}

// Assessment is a point-in-time copy of the session state.
type Assessment struct {
	SessionID    string
	UserID       string
	Type         question.Category
	Questions    []question.Question
	Answers      []string
	CurrentIndex int
	StartedAt    time.Time
	Status       Status

	// Result is nil until the session is completed.
	Result *Result
}

// TotalQuestions returns len(Questions).
func (a Assessment) TotalQuestions() int {
	return len(a.Questions)
}

// assessment is the aggregate root owned by the Controller.
type assessment struct {
	sessionID    string
	userID       string
	category     question.Category
	questions    []question.Question
	answers      []string
	currentIndex int
	startedAt    time.Time
	status       Status
	result       *Result

	// duration is computed at the first finalize attempt and reused on
	// retries.
	duration *int

	// finalizing is set while a persist is in flight; answers are frozen.
	finalizing bool
}

func (a *assessment) snapshot() Assessment {
	qs := make([]question.Question, len(a.questions))
	copy(qs, a.questions)
	answers := make([]string, len(a.answers))
	copy(answers, a.answers)

	var res *Result
	if a.result != nil {
		r := *a.result
		res = &r
	}

	return Assessment{
		SessionID:    a.sessionID,
		UserID:       a.userID,
		Type:         a.category,
		Questions:    qs,
		Answers:      answers,
		CurrentIndex: a.currentIndex,
		StartedAt:    a.startedAt,
		Status:       a.status,
		Result:       res,
	}
}
