// Package scoring implements the keyword and length heuristics used to
// grade interview answers.
package scoring

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/mockprep/internal/question"
)

// MaxScore is the ceiling for every score this package produces.
const MaxScore = 100

const (
	keywordPoints    = 8
	examplePoints    = 10
	longAnswerPoints = 10
	longAnswerRunes  = 200
	exampleSubstring = "example"
)

// Flow selects which keyword table a Scorer uses.
type Flow string

const (
	// FlowLive grades an answer right after it is submitted. It uses the
	// extended keyword sets and scores unknown categories as technical.
	FlowLive Flow = "live"

	// FlowReview grades stored answers in the history view. It uses the
	// base keyword sets and gives no keyword bonus to unknown categories.
	FlowReview Flow = "review"
)

// ParseFlow reports whether s names a known flow.
func ParseFlow(s string) (Flow, bool) {
	switch f := Flow(strings.ToLower(strings.TrimSpace(s))); f {
	case FlowLive, FlowReview:
		return f, true
	default:
		return f, false
	}
}

var baseKeywords = map[question.Category][]string{
	question.CategoryTechnical:  {"implement", "code", "system", "technology", "solution"},
	question.CategoryBehavioral: {"situation", "task", "action", "result", "example"},
	question.CategoryManagerial: {"team", "lead", "manage", "decision", "strategy"},
}

var liveKeywords = map[question.Category][]string{
	question.CategoryTechnical:  baseKeywords[question.CategoryTechnical],
	question.CategoryBehavioral: append(append([]string{}, baseKeywords[question.CategoryBehavioral]...), "experience"),
	question.CategoryManagerial: append(append([]string{}, baseKeywords[question.CategoryManagerial]...), "motivate"),
}

// Scorer grades a single answer. The zero value behaves like FlowLive.
type Scorer struct {
	flow Flow
}

// New returns a Scorer for flow. Unknown flows grade like FlowLive.
func New(flow Flow) Scorer {
	return Scorer{flow: flow}
}

// Flow returns the keyword table this scorer uses.
func (s Scorer) Flow() Flow {
	if s.flow == FlowReview {
		return FlowReview
	}
	return FlowLive
}

// Keywords returns the keyword set applied to category.
func (s Scorer) Keywords(category question.Category) []string {
	if s.Flow() == FlowReview {
		return baseKeywords[category]
	}
	if kw, ok := liveKeywords[category]; ok {
		return kw
	}
	return liveKeywords[question.CategoryTechnical]
}

// Score grades answer for category on a 0-100 scale.
//
// The "example" substring bonus is applied on top of the behavioral
// keyword of the same name, so a behavioral answer mentioning an example
// collects both.
func (s Scorer) Score(answer string, category question.Category) int {
	return s.Breakdown(answer, category).Total
}

// Breakdown is the per-rule contribution to a score.
type Breakdown struct {
	Words        int
	Length       int
	Matched      []string
	WordBonus    int
	KeywordBonus int
	ExampleBonus int
	LengthBonus  int
	Total        int
}

// Breakdown grades answer and reports how each rule contributed.
func (s Scorer) Breakdown(answer string, category question.Category) Breakdown {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return Breakdown{}
	}

	b := Breakdown{
		Words:  WordCount(answer),
		Length: utf8.RuneCountInString(answer),
	}

	switch {
	case b.Words >= 50:
		b.WordBonus = 25
	case b.Words >= 30:
		b.WordBonus = 15
	case b.Words >= 15:
		b.WordBonus = 10
	}

	lower := strings.ToLower(answer)
	for _, kw := range s.Keywords(category) {
		if strings.Contains(lower, kw) {
			b.Matched = append(b.Matched, kw)
			b.KeywordBonus += keywordPoints
		}
	}

	if strings.Contains(lower, exampleSubstring) {
		b.ExampleBonus = examplePoints
	}
	if b.Length > longAnswerRunes {
		b.LengthBonus = longAnswerPoints
	}

	sum := float64(b.WordBonus + b.KeywordBonus + b.ExampleBonus + b.LengthBonus)
	b.Total = int(math.Min(math.Round(sum), MaxScore))
	return b
}

// WordCount counts the single-space separated tokens of the trimmed text.
// Runs of spaces produce empty tokens that are counted too.
func WordCount(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	return len(strings.Split(trimmed, " "))
}
