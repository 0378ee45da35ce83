package sample

import (
	"fmt"
	"strings"

	"github.com/abhisek/mockprep/internal/question"
)

const systemPrompt = `You are an experienced interview coach. Write the answer a well-prepared candidate would give, so the user can compare it with their own.`

var categoryGuidance = map[question.Category]string{
	question.CategoryTechnical:  "Explain the approach concretely: the system, the trade-offs, and how the solution was implemented and verified.",
	question.CategoryBehavioral: "Use the STAR structure (situation, task, action, result) around one specific example.",
	question.CategoryManagerial: "Show how the candidate leads the team, makes decisions, and sets strategy, with one concrete example.",
}

func buildUserMessage(questionText string, category question.Category) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(questionText))
	fmt.Fprintf(&b, "Category: %s\n", category)
	if g, ok := categoryGuidance[category]; ok {
		fmt.Fprintf(&b, "\nGuidance: %s\n", g)
	}
	b.WriteString("\nKeep it natural and spoken, not a bullet list.")

	return b.String()
}

// parseUserMessage recovers the question and category from a message built
// by buildUserMessage.
func parseUserMessage(msg string) (string, question.Category) {
	var text string
	var cat question.Category
	for _, line := range strings.Split(msg, "\n") {
		switch {
		case strings.HasPrefix(line, "Question: "):
			text = strings.TrimPrefix(line, "Question: ")
		case strings.HasPrefix(line, "Category: "):
			cat = question.Category(strings.TrimPrefix(line, "Category: "))
		}
	}
	return text, cat
}
