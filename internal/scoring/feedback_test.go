package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/mockprep/internal/question"
)

func TestFeedbackTiers(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{score: 100, want: "Excellent"},
		{score: 80, want: "Excellent"},
		{score: 79, want: "Good answer"},
		{score: 65, want: "Good answer"},
		{score: 64, want: "Fair answer"},
		{score: 50, want: "Fair answer"},
		{score: 49, want: "needs improvement"},
		{score: 0, want: "needs improvement"},
	}
	for _, tt := range tests {
		assert.Contains(t, Feedback(tt.score), tt.want, "score=%d", tt.score)
	}
}

func TestRatingFor(t *testing.T) {
	assert.Equal(t, RatingHigh, RatingFor(80))
	assert.Equal(t, RatingMedium, RatingFor(79))
	assert.Equal(t, RatingMedium, RatingFor(60))
	assert.Equal(t, RatingLow, RatingFor(59))
}

func TestValidate(t *testing.T) {
	v := New(FlowLive).Validate(strings.Repeat("code ", 10), question.CategoryTechnical)
	assert.Equal(t, 8, v.Score)
	assert.Equal(t, Feedback(8), v.Feedback)
}
