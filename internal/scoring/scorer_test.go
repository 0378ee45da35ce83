package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/question"
)

func words(prefix string, filler string, total int) string {
	parts := strings.Fields(prefix)
	for len(parts) < total {
		parts = append(parts, filler)
	}
	return strings.Join(parts, " ")
}

func TestScore_Empty(t *testing.T) {
	s := New(FlowLive)
	assert.Equal(t, 0, s.Score("", question.CategoryTechnical))
	assert.Equal(t, 0, s.Score("   \n\t", question.CategoryTechnical))
}

func TestScore_FiftyWordTechnical(t *testing.T) {
	answer := words("I would implement a solution", "carefully", 50)
	require.Equal(t, 50, WordCount(answer))
	require.Greater(t, len(answer), 200)

	b := New(FlowLive).Breakdown(answer, question.CategoryTechnical)
	assert.Equal(t, 25, b.WordBonus)
	assert.Equal(t, 16, b.KeywordBonus)
	assert.Equal(t, []string{"implement", "solution"}, b.Matched)
	assert.Equal(t, 0, b.ExampleBonus)
	assert.Equal(t, 10, b.LengthBonus)
	assert.Equal(t, 51, b.Total)
}

func TestScore_AllTechnicalKeywords(t *testing.T) {
	answer := words("for example I implement code for a system using technology as a solution", "carefully", 80)
	assert.Equal(t, 85, New(FlowLive).Score(answer, question.CategoryTechnical))
}

func TestScore_KeywordCountedOnce(t *testing.T) {
	s := New(FlowLive)
	assert.Equal(t, 8, s.Score("code code code CODE", question.CategoryTechnical))
}

func TestScore_WordTiers(t *testing.T) {
	s := New(FlowReview)
	tests := []struct {
		words int
		want  int
	}{
		{words: 14, want: 0},
		{words: 15, want: 10},
		{words: 29, want: 10},
		{words: 30, want: 15},
		{words: 49, want: 15},
		{words: 50, want: 25},
	}
	for _, tt := range tests {
		// "ab" keeps every answer under the length bonus threshold.
		answer := strings.TrimSpace(strings.Repeat("ab ", tt.words))
		assert.Equal(t, tt.want, s.Score(answer, question.CategoryTechnical), "words=%d", tt.words)
	}
}

func TestScore_ExampleDoubleCountsForBehavioral(t *testing.T) {
	answer := "For example, in one situation I stayed calm."
	b := New(FlowLive).Breakdown(answer, question.CategoryBehavioral)
	assert.Equal(t, []string{"situation", "example"}, b.Matched)
	assert.Equal(t, 16, b.KeywordBonus)
	assert.Equal(t, 10, b.ExampleBonus)
	assert.Equal(t, 26, b.Total)
}

func TestScore_FlowKeywordSets(t *testing.T) {
	answer := "I motivate the team."
	assert.Equal(t, 16, New(FlowLive).Score(answer, question.CategoryManagerial))
	assert.Equal(t, 8, New(FlowReview).Score(answer, question.CategoryManagerial))

	star := "Plenty of experience."
	assert.Equal(t, 8, New(FlowLive).Score(star, question.CategoryBehavioral))
	assert.Equal(t, 0, New(FlowReview).Score(star, question.CategoryBehavioral))
}

func TestScore_UnknownCategory(t *testing.T) {
	answer := "I write code."
	assert.Equal(t, 8, New(FlowLive).Score(answer, "sales"))
	assert.Equal(t, 0, New(FlowReview).Score(answer, "sales"))
}

func TestScore_NeverExceedsMax(t *testing.T) {
	answer := words("situation task action result example experience", "x", 60) + strings.Repeat("!", 200)
	got := New(FlowLive).Score(answer, question.CategoryBehavioral)
	assert.Equal(t, 25+48+10+10, got)
	assert.LessOrEqual(t, got, MaxScore)
}

func TestScore_LengthCountsRunes(t *testing.T) {
	s := New(FlowReview)
	assert.Equal(t, 0, s.Score(strings.Repeat("é", 200), question.CategoryTechnical))
	assert.Equal(t, 10, s.Score(strings.Repeat("é", 201), question.CategoryTechnical))
}

func TestWordCount_SingleSpaceSplit(t *testing.T) {
	assert.Equal(t, 0, WordCount("  "))
	assert.Equal(t, 1, WordCount(" one "))
	assert.Equal(t, 3, WordCount("a  b"))
	assert.Equal(t, 1, WordCount("a\nb"))
}

func TestZeroScorerIsLive(t *testing.T) {
	var s Scorer
	assert.Equal(t, FlowLive, s.Flow())
	assert.Contains(t, s.Keywords(question.CategoryBehavioral), "experience")
}

func TestParseFlow(t *testing.T) {
	f, ok := ParseFlow(" Review ")
	assert.True(t, ok)
	assert.Equal(t, FlowReview, f)
	_, ok = ParseFlow("strict")
	assert.False(t, ok)
}
