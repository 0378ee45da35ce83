package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

// QuestionView is what the interview screen shows for the current question.
type QuestionView struct {
	Index      int
	Total      int
	Text       string
	Submitted  bool
	Draft      string
	Transcript string
	Recording  bool
	Playing    session.Playback

	// Sample is shown only when SampleVisible is set.
	Sample        string
	SampleVisible bool

	// Validation is nil while hidden.
	Validation *scoring.Validation
}

// ViewOf captures the current state of q.
func ViewOf(q *session.QuestionState, total int) QuestionView {
	v := QuestionView{
		Index:      q.Index(),
		Total:      total,
		Text:       q.Question().Text,
		Submitted:  q.Submitted(),
		Draft:      q.Draft(),
		Transcript: q.Transcript(),
		Recording:  q.Recording(),
		Playing:    q.Playing(),
	}
	v.Sample, v.SampleVisible = q.Sample()
	if val, ok := q.Validation(); ok {
		v.Validation = val
	}
	return v
}

// Question renders the question card with the answer and any review panels.
func Question(v QuestionView, width int) string {
	// Card border and padding take 6 cells, the answer panel 2 more.
	body := lipgloss.NewStyle().Width(max(width-8, 20))

	var b strings.Builder
	b.WriteString(QuestionProgress(v.Index, v.Total, max(width-24, 10)).View() + "\n\n")
	b.WriteString(theme.Body.Bold(true).Render(body.Render(v.Text)) + "\n")

	switch v.Playing {
	case session.PlaybackQuestion:
		b.WriteString(theme.Hint.Render("♪ reading question") + "\n")
	case session.PlaybackAnswer:
		b.WriteString(theme.Hint.Render("♪ reading answer") + "\n")
	}

	label := "Your answer"
	if v.Submitted {
		label += " (submitted)"
	}
	b.WriteString("\n" + theme.Label.Render(label) + "\n")
	if strings.TrimSpace(v.Draft) == "" {
		b.WriteString(theme.Panel.Render(theme.Hint.Render("Nothing written yet.")) + "\n")
	} else {
		b.WriteString(theme.Panel.Render(body.Render(v.Draft)) + "\n")
	}
	if v.Recording {
		line := "● recording"
		if v.Transcript != "" {
			line += "  " + v.Transcript
		}
		b.WriteString(theme.Warning.Render(line) + "\n")
	}

	if v.Validation != nil {
		b.WriteString("\n" + field("Score", theme.Score(v.Validation.Score)+theme.Subtitle.Render(" / 100")))
		b.WriteString(theme.Rating(scoring.RatingFor(v.Validation.Score)).Render(v.Validation.Feedback) + "\n")
	}
	if v.SampleVisible {
		b.WriteString("\n" + theme.Label.Render("Sample answer") + "\n")
		b.WriteString(theme.Panel.Render(body.Render(v.Sample)) + "\n")
	}

	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// Notice renders a one-line message below the card.
func Notice(msg string, failed bool) string {
	if failed {
		return theme.Failure.Render(fmt.Sprintf("✗ %s", msg))
	}
	return theme.Hint.Render(msg)
}
