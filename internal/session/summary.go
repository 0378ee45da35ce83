package session

import (
	"strings"

	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/scoring"
)

// Summary is the end-of-assessment report.
type Summary struct {
	Type               question.Category
	Completed          bool
	Score              int
	Rating             scoring.Rating
	Feedback           string
	DurationMinutes    int
	AttemptedQuestions int
	TotalQuestions     int
	Items              []SummaryItem
}

// SummaryItem is one question and the committed answer.
type SummaryItem struct {
	Question question.Question
	Answer   string
	Answered bool
}

// BuildSummary reports on a. Before completion the score is the one
// Finalize would compute now and the duration is zero.
func BuildSummary(a Assessment) Summary {
	s := Summary{
		Type:           a.Type,
		TotalQuestions: a.TotalQuestions(),
		Items:          make([]SummaryItem, len(a.Questions)),
	}
	if a.Result != nil {
		s.Completed = true
		s.Score = a.Result.Score
		s.DurationMinutes = a.Result.DurationMinutes
		s.AttemptedQuestions = a.Result.AttemptedQuestions
	} else {
		s.Score = scoring.Aggregate(a.Answers, len(a.Questions))
		s.AttemptedQuestions = scoring.Attempted(a.Answers)
	}
	s.Rating = scoring.RatingFor(s.Score)
	s.Feedback = scoring.Feedback(s.Score)

	for i, q := range a.Questions {
		var ans string
		if i < len(a.Answers) {
			ans = a.Answers[i]
		}
		s.Items[i] = SummaryItem{
			Question: q,
			Answer:   ans,
			Answered: strings.TrimSpace(ans) != "",
		}
	}
	return s
}
