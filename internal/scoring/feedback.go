package scoring

import "github.com/abhisek/mockprep/internal/question"

// Feedback is the tiered comment shown next to a per-question score.
func Feedback(score int) string {
	switch {
	case score >= 80:
		return "Excellent answer! Comprehensive and well-structured with good examples."
	case score >= 65:
		return "Good answer! Consider adding more specific examples and details."
	case score >= 50:
		return "Fair answer. Could benefit from more structure and concrete examples."
	default:
		return "Your answer needs improvement. Include specific examples and more detail."
	}
}

// Rating is the coarse band used to color scores in history views.
type Rating string

const (
	RatingHigh   Rating = "high"
	RatingMedium Rating = "medium"
	RatingLow    Rating = "low"
)

// RatingFor bands a 0-100 score.
func RatingFor(score int) Rating {
	switch {
	case score >= 80:
		return RatingHigh
	case score >= 60:
		return RatingMedium
	default:
		return RatingLow
	}
}

// Validation pairs a score with its feedback text.
type Validation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Validate scores answer and attaches the matching feedback tier.
func (s Scorer) Validate(answer string, category question.Category) Validation {
	score := s.Score(answer, category)
	return Validation{Score: score, Feedback: Feedback(score)}
}
