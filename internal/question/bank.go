package question

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var builtinBank []byte

// ErrNoQuestions is returned when neither the requested nor the default
// category has a question set.
var ErrNoQuestions = errors.New("no questions available")

// bankFile is the on-disk layout of a question bank.
type bankFile struct {
	QuestionsPerSession int                      `yaml:"questions_per_session"`
	DefaultCategory     Category                 `yaml:"default_category"`
	Categories          map[Category][]bankEntry `yaml:"categories"`
}

type bankEntry struct {
	ID   int    `yaml:"id"`
	Text string `yaml:"text"`
}

// Bank is a validated, read-only set of questions per category.
type Bank struct {
	fallback Category
	sets     map[Category][]Question
}

// Builtin returns the bank compiled into the binary.
func Builtin() *Bank {
	b, err := Parse(builtinBank)
	if err != nil {
		panic(fmt.Sprintf("builtin question bank: %v", err))
	}
	return b
}

// LoadFile reads and validates a YAML question bank from path.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a YAML question bank.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateBank(&f); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	b := &Bank{
		fallback: f.DefaultCategory,
		sets:     make(map[Category][]Question, len(f.Categories)),
	}
	for cat, entries := range f.Categories {
		qs := make([]Question, len(entries))
		for i, e := range entries {
			qs[i] = Question{ID: e.ID, Text: strings.TrimSpace(e.Text), Category: cat}
		}
		b.sets[cat] = qs
	}
	return b, nil
}

func validateBank(f *bankFile) error {
	if f.QuestionsPerSession != QuestionsPerSession {
		return fmt.Errorf("questions_per_session must be %d, got %d", QuestionsPerSession, f.QuestionsPerSession)
	}
	if f.DefaultCategory == "" {
		f.DefaultCategory = DefaultCategory
	}
	if !f.DefaultCategory.Valid() {
		return fmt.Errorf("unknown default_category %q", f.DefaultCategory)
	}
	if _, ok := f.Categories[f.DefaultCategory]; !ok {
		return fmt.Errorf("default_category %q has no questions", f.DefaultCategory)
	}

	for cat, entries := range f.Categories {
		if !cat.Valid() {
			return fmt.Errorf("unknown category %q", cat)
		}
		if len(entries) != f.QuestionsPerSession {
			return fmt.Errorf("category %q has %d questions, want %d", cat, len(entries), f.QuestionsPerSession)
		}
		seen := make(map[int]bool, len(entries))
		for i, e := range entries {
			if e.ID <= 0 {
				return fmt.Errorf("category %q question %d: id must be positive", cat, i)
			}
			if seen[e.ID] {
				return fmt.Errorf("category %q: duplicate id %d", cat, e.ID)
			}
			seen[e.ID] = true
			if strings.TrimSpace(e.Text) == "" {
				return fmt.Errorf("category %q question %d: text is required", cat, e.ID)
			}
		}
	}
	for _, cat := range Categories() {
		if _, ok := f.Categories[cat]; !ok {
			return fmt.Errorf("missing category %q", cat)
		}
	}
	return nil
}

// Questions returns a copy of the set for category. An unknown category
// silently falls back to the bank's default so a session can always start.
func (b *Bank) Questions(category Category) ([]Question, error) {
	qs, ok := b.sets[category]
	if !ok {
		qs, ok = b.sets[b.fallback]
	}
	if !ok {
		return nil, ErrNoQuestions
	}
	out := make([]Question, len(qs))
	copy(out, qs)
	return out, nil
}

// Resolve reports which category Questions will actually serve.
func (b *Bank) Resolve(category Category) Category {
	if _, ok := b.sets[category]; ok {
		return category
	}
	return b.fallback
}
