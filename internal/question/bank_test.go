package question

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_EveryCategoryHasFixedSet(t *testing.T) {
	b := Builtin()

	for _, cat := range Categories() {
		qs, err := b.Questions(cat)
		require.NoError(t, err)
		require.Len(t, qs, QuestionsPerSession, "category %s", cat)

		ids := make(map[int]bool)
		for _, q := range qs {
			assert.False(t, ids[q.ID], "duplicate id %d in %s", q.ID, cat)
			ids[q.ID] = true
			assert.Equal(t, cat, q.Category)
			assert.NotEmpty(t, q.Text)
		}
	}
}

func TestQuestions_UnknownCategoryFallsBack(t *testing.T) {
	b := Builtin()

	qs, err := b.Questions(Category("astrology"))
	require.NoError(t, err)
	require.Len(t, qs, QuestionsPerSession)
	assert.Equal(t, DefaultCategory, qs[0].Category)
	assert.Equal(t, DefaultCategory, b.Resolve("astrology"))
	assert.Equal(t, CategoryManagerial, b.Resolve(CategoryManagerial))
}

func TestQuestions_Deterministic(t *testing.T) {
	b := Builtin()
	first, _ := b.Questions(CategoryBehavioral)
	second, _ := b.Questions(CategoryBehavioral)
	assert.Equal(t, first, second)

	// Mutating a returned slice must not leak into the bank.
	first[0].Text = "changed"
	third, _ := b.Questions(CategoryBehavioral)
	assert.NotEqual(t, "changed", third[0].Text)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("  Behavioral ")
	assert.True(t, ok)
	assert.Equal(t, CategoryBehavioral, c)

	_, ok = ParseCategory("sales")
	assert.False(t, ok)
}

func TestParse_Rejects(t *testing.T) {
	five := func(cat string) string {
		var b strings.Builder
		b.WriteString("  " + cat + ":\n")
		for i := 1; i <= 5; i++ {
			b.WriteString("    - id: " + string(rune('0'+i)) + "\n      text: q\n")
		}
		return b.String()
	}

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "wrong count",
			doc:  "questions_per_session: 3\ncategories:\n" + five("technical"),
			want: "questions_per_session",
		},
		{
			name: "unknown category",
			doc:  "questions_per_session: 5\ncategories:\n" + five("technical") + five("sales"),
			want: "unknown category",
		},
		{
			name: "missing default",
			doc:  "questions_per_session: 5\ndefault_category: managerial\ncategories:\n" + five("technical"),
			want: "has no questions",
		},
		{
			name: "missing category",
			doc:  "questions_per_session: 5\ncategories:\n" + five("technical") + five("managerial"),
			want: `missing category "behavioral"`,
		},
		{
			name: "short set",
			doc:  "questions_per_session: 5\ncategories:\n  technical:\n    - id: 1\n      text: q\n",
			want: "has 1 questions",
		},
		{
			name: "duplicate id",
			doc: "questions_per_session: 5\ncategories:\n  technical:\n" +
				strings.Repeat("    - id: 1\n      text: q\n", 5),
			want: "duplicate id",
		},
		{
			name: "bad yaml",
			doc:  "questions_per_session: [",
			want: "parse yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, builtinBank, 0o644))

	b, err := LoadFile(path)
	require.NoError(t, err)
	qs, err := b.Questions(CategoryManagerial)
	require.NoError(t, err)
	assert.Equal(t, "How do you motivate your team members?", qs[0].Text)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
