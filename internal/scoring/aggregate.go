package scoring

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Attempted counts answers that are non-empty after trimming.
func Attempted(answers []string) int {
	n := 0
	for _, a := range answers {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

// Aggregate computes the session score: the answered share of questions
// scaled to 100, plus up to 10 points for an average answer length of 50
// characters or more. Length is averaged over answered questions only and
// uses the untrimmed answer.
func Aggregate(answers []string, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 0
	}

	answered := 0
	totalLen := 0
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			continue
		}
		answered++
		totalLen += utf8.RuneCountInString(a)
	}
	if answered == 0 {
		return 0
	}

	base := float64(answered) / float64(totalQuestions) * 100
	avgLen := float64(totalLen) / float64(answered)
	bonus := math.Min(avgLen/50, 1) * 10

	return int(math.Round(math.Min(base+bonus, MaxScore)))
}
