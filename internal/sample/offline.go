package sample

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
)

var offlineTemplates = map[question.Category]Answer{
	question.CategoryTechnical: {
		Text: "For \"%s\" I would start from the requirements and the constraints of the system. " +
			"In my last role I designed the solution around small, well-tested components, implemented it " +
			"incrementally behind a feature flag, and measured latency and error rates before and after. " +
			"When something broke I reproduced it with a failing test first, fixed the code, and wrote up " +
			"what the technology choice cost us so the team could decide with real data next time.",
		KeyPoints: []string{"clarifies requirements first", "incremental, tested implementation", "decisions backed by measurements"},
	},
	question.CategoryBehavioral: {
		Text: "A good example for \"%s\": the situation was a release slipping two weeks before a customer launch. " +
			"My task was to get the integration stable. The action I took was to split the work into daily " +
			"milestones, pair with the engineer who knew the legacy API, and report progress openly. " +
			"The result was that we shipped on time, and that experience taught me to surface risk early.",
		KeyPoints: []string{"clear STAR structure", "one concrete example", "measurable result"},
	},
	question.CategoryManagerial: {
		Text: "On \"%s\": I lead by making priorities explicit. When my team disagreed on a migration strategy, " +
			"I asked each lead to write a one-page proposal, we reviewed them together, and I made the " +
			"decision with the trade-offs written down. I manage follow-through with short weekly check-ins " +
			"and try to motivate people by giving them ownership of the outcome, not just the tasks.",
		KeyPoints: []string{"transparent decision making", "team ownership", "steady follow-through"},
	},
}

// OfflineAnswer builds a canned sample answer for a request produced by
// LLMFetcher. It backs the mock provider so the interview works without an
// API key.
func OfflineAnswer(req llm.Request) llm.MockResponse {
	var text string
	var cat question.Category
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			text, cat = parseUserMessage(m.Content)
		}
	}

	tmpl, ok := offlineTemplates[cat]
	if !ok {
		tmpl = offlineTemplates[question.DefaultCategory]
	}
	out := Answer{Text: fmt.Sprintf(tmpl.Text, text), KeyPoints: tmpl.KeyPoints}

	content, err := json.Marshal(out)
	if err != nil {
		return llm.MockResponse{Err: err}
	}
	return llm.MockResponse{Content: content}
}
