package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mockprep/internal/history"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04"

// Summary renders the end-of-assessment report.
func Summary(s session.Summary, width int) string {
	var b strings.Builder

	title := "Assessment complete"
	if !s.Completed {
		title = "Assessment not saved"
	}
	b.WriteString(theme.Title.Render(title) + "\n\n")
	b.WriteString(field("Type", string(s.Type)))
	b.WriteString(field("Score", theme.Score(s.Score)+theme.Subtitle.Render(" / 100  ("+string(s.Rating)+")")))
	b.WriteString(field("Answered", fmt.Sprintf("%d of %d", s.AttemptedQuestions, s.TotalQuestions)))
	if s.Completed {
		b.WriteString(field("Duration", minutes(s.DurationMinutes)))
	}
	b.WriteString("\n" + theme.Body.Render(s.Feedback) + "\n")

	if len(s.Items) > 0 {
		b.WriteString("\n")
		for i, it := range s.Items {
			mark := theme.Rating(scoring.RatingHigh).Render("✓")
			if !it.Answered {
				mark = theme.Hint.Render("·")
			}
			b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, truncate(it.Question.Text, width-6)))
		}
	}
	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// HistoryTable renders a list of stored assessments.
func HistoryTable(entries []history.Entry) string {
	if len(entries) == 0 {
		return theme.Hint.Render("No assessments yet.")
	}

	header := fmt.Sprintf("%-6s  %-16s  %-10s  %5s  %8s  %8s", "ID", "Completed", "Type", "Score", "Answered", "Duration")
	rows := []string{theme.Label.Render(header)}
	for _, e := range entries {
		score := pad(theme.Score(e.Score), 5)
		rows = append(rows, fmt.Sprintf("%-6d  %-16s  %-10s  %s  %8s  %8s",
			e.ID,
			e.CompletedAt.Local().Format(timeLayout),
			e.Type,
			score,
			fmt.Sprintf("%d/%d", e.AttemptedQuestions, e.TotalQuestions),
			minutes(e.DurationMinutes),
		))
	}
	return strings.Join(rows, "\n")
}

// Detail renders one stored assessment with its per-question review.
func Detail(d *history.Detail, samples map[int]string, width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Assessment #%d", d.ID)) + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · %s · %s",
		d.Type, d.CompletedAt.Local().Format(timeLayout), minutes(d.DurationMinutes))) + "\n\n")
	b.WriteString(field("Score", theme.Score(d.Score)+theme.Subtitle.Render(" / 100")))
	b.WriteString(field("Answered", fmt.Sprintf("%d of %d", d.AttemptedQuestions, d.TotalQuestions)))

	body := lipgloss.NewStyle().Width(max(width-4, 20))
	for _, it := range d.Items {
		b.WriteString("\n" + theme.Label.Render(fmt.Sprintf("Q%d. ", it.Index+1)) + body.Render(it.Question.Text) + "\n")
		if it.Answered {
			b.WriteString(theme.Panel.Render(body.Render(it.Answer)) + "\n")
			b.WriteString(fmt.Sprintf("  %s  %s\n", theme.Score(it.Score), theme.Hint.Render(it.Feedback)))
		} else {
			b.WriteString("  " + theme.Hint.Render(it.Feedback) + "\n")
		}
		if s, ok := samples[it.Index]; ok {
			b.WriteString(theme.Label.Render("  Sample answer") + "\n")
			b.WriteString(theme.Panel.Render(body.Render(s)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Stats renders aggregate history statistics.
func Stats(st *history.Stats) string {
	if st.Total == 0 {
		return theme.Hint.Render("No assessments yet.")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Interview practice") + "\n\n")
	b.WriteString(field("Assessments", fmt.Sprintf("%d", st.Total)))
	b.WriteString(field("Average", theme.Score(st.Average)))
	b.WriteString(field("Best", theme.Score(st.Best)))

	b.WriteString("\n" + theme.Label.Render(fmt.Sprintf("%-10s  %5s  %7s  %4s  %-16s", "Type", "Count", "Average", "Best", "Latest")) + "\n")
	for _, c := range st.Categories {
		b.WriteString(fmt.Sprintf("%-10s  %5d  %s  %s  %-16s\n",
			c.Category, c.Count, pad(theme.Score(c.Average), 7), pad(theme.Score(c.Best), 4),
			c.Latest.Local().Format(timeLayout)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func field(label, value string) string {
	return theme.Label.Render(fmt.Sprintf("%-10s", label)) + " " + value + "\n"
}

func minutes(n int) string {
	if n == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d min", n)
}

// pad right-aligns a styled string to width visible cells.
func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
