package casefile

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/screens"
	"github.com/abhisek/sleuth/internal/ui/components"
	"github.com/abhisek/sleuth/internal/ui/layout"
	"github.com/abhisek/sleuth/internal/ui/theme"
	"github.com/abhisek/sleuth/internal/workspace"
)

// previewRows caps each table in the data pane.
const previewRows = 5

func (s *Screen) View(width, height int) string {
	if s.ctrl == nil {
		return theme.Incorrect.Render(s.loadErr)
	}
	inner := max(width-4, 20)
	snap := s.ctrl.View()

	var top []string
	top = append(top, s.renderHeading())
	if !layout.IsCompactHeight(height) {
		top = append(top, theme.Body.Width(inner).Render(s.c.Brief))
	}
	top = append(top, s.renderObjectives(inner))

	switch {
	case s.loadErr != "":
		top = append(top, theme.Incorrect.Render("Case database unavailable: "+s.loadErr))
	case !s.loaded:
		top = append(top, theme.Hint.Render("Opening the case files…"))
	case s.showData:
		top = append(top, s.renderData(inner))
	default:
		top = append(top, renderSchema(s.schema, inner))
	}

	top = append(top, s.input.View())
	if line := s.renderStatus(snap); line != "" {
		top = append(top, line)
	}
	if h := s.renderHint(inner); h != "" {
		top = append(top, h)
	}

	body := strings.Join(top, "\n\n")
	if snap.NoticeVisible {
		body += "\n\n" + s.renderNotice(snap, inner)
	}

	if snap.Result != nil && !snap.Result.Failed() {
		// header, rule and footer lines of the table
		room := height - lipgloss.Height(body) - 5
		t := components.ResultTable{
			Columns: snap.Result.Columns,
			Rows:    snap.Result.Rows,
			Width:   inner,
			MaxRows: max(room, 3),
		}
		body += "\n\n" + t.View()
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(body)
}

func (s *Screen) renderHeading() string {
	title := theme.Title.Render(s.c.Title)
	meta := theme.Subtitle.Render(fmt.Sprintf("  %s  ·  %s  ·  %d XP",
		s.c.ID, screens.Stars(s.c.Difficulty), s.c.XPReward))
	return title + meta
}

func (s *Screen) renderObjectives(width int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Objectives"))
	for _, o := range s.c.Objectives {
		b.WriteString("\n" + theme.Body.Width(width).Render("• "+o))
	}
	return b.String()
}

func renderSchema(schema []api.TableSchema, width int) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Tables"))
	for _, t := range schema {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			col := c.Name + " " + theme.Hint.Render(c.Type)
			switch {
			case c.IsPrimary:
				col += theme.Hint.Render(" pk")
			case c.IsForeign:
				col += theme.Hint.Render(" fk")
			}
			cols[i] = col
		}
		line := theme.Code.Render(t.TableName) + "(" + strings.Join(cols, ", ") + ")"
		b.WriteString("\n" + lipgloss.NewStyle().Width(width).Render(line))
	}
	return b.String()
}

func (s *Screen) renderData(width int) string {
	if s.dataErr != "" {
		return theme.Incorrect.Render("Data unavailable: " + s.dataErr)
	}
	if s.data == nil {
		return theme.Hint.Render("Loading data…")
	}
	var parts []string
	for _, t := range s.data {
		var cols []string
		for _, ts := range s.schema {
			if ts.TableName == t.TableName {
				for _, c := range ts.Columns {
					cols = append(cols, c.Name)
				}
			}
		}
		tbl := components.ResultTable{Columns: cols, Rows: t.Data, Width: width, MaxRows: previewRows}
		parts = append(parts, theme.Code.Render(t.TableName)+"\n"+tbl.View())
	}
	return strings.Join(parts, "\n\n")
}

func (s *Screen) renderStatus(snap workspace.Snapshot) string {
	switch snap.State {
	case workspace.StateRunning:
		return theme.Hint.Render("Running query…")
	case workspace.StateFailed:
		return theme.Incorrect.Render("✘ " + snap.Error)
	case workspace.StateSucceeded:
		if snap.Result != nil && snap.Result.IsCorrect != nil {
			msg := "Not the answer yet."
			if snap.Result.Message != "" {
				msg = snap.Result.Message
			}
			return theme.Hint.Render(msg)
		}
	case workspace.StateRevealed:
		if !snap.NoticeVisible {
			return theme.Correct.Render("✔ Case closed. Press Enter for the next case.")
		}
	}
	return ""
}

func (s *Screen) renderHint(width int) string {
	switch {
	case s.hintPending:
		return theme.Hint.Render("Thinking…")
	case s.hintErr != "":
		return theme.Incorrect.Render("Hint unavailable: " + s.hintErr)
	case s.hint != nil:
		return theme.Card.Width(width).Render(theme.Code.Render("Hint") + "\n" + theme.Body.Render(s.hint.Text))
	}
	return ""
}

func (s *Screen) renderNotice(snap workspace.Snapshot, width int) string {
	lines := []string{theme.Correct.Render("✔ " + snap.SuccessMessage)}
	if snap.Explanation != "" {
		lines = append(lines, theme.Body.Render(snap.Explanation))
	}
	if s.award != nil {
		if s.award.New {
			lines = append(lines, theme.Code.Render(fmt.Sprintf("+%d XP", s.award.XP)))
		} else {
			lines = append(lines, theme.Hint.Render("Already solved, no XP this time."))
		}
	}
	lines = append(lines, theme.Hint.Render("Enter: next case"))
	return theme.Notice.Width(width).Render(strings.Join(lines, "\n"))
}
