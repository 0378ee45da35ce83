// Package question provides the fixed question sets served to an
// assessment attempt.
package question

import "strings"

// QuestionsPerSession is the number of questions in every attempt.
const QuestionsPerSession = 5

// Category selects the question set and the scoring keywords.
type Category string

const (
	CategoryTechnical  Category = "technical"
	CategoryBehavioral Category = "behavioral"
	CategoryManagerial Category = "managerial"
)

// DefaultCategory is served when an unknown category is requested.
const DefaultCategory = CategoryTechnical

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategoryTechnical, CategoryBehavioral, CategoryManagerial}
}

// ParseCategory normalizes s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

func (c Category) String() string { return string(c) }

// Question is immutable once served.
type Question struct {
	ID       int      `json:"id" yaml:"id"`
	Text     string   `json:"question" yaml:"text"`
	Category Category `json:"category" yaml:"category"`
}

// Provider returns the ordered questions for a category.
type Provider interface {
	Questions(category Category) ([]Question, error)
}
