package components

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/ui/theme"
)

const maxCellWidth = 28

// ResultTable renders query rows as an aligned text table.
type ResultTable struct {
	Columns []string
	Rows    []api.Row
	Width   int
	MaxRows int // 0 shows every row
}

// FormatCell renders a single value the way the table shows it.
func FormatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 1 {
		return string(r[:w])
	}
	return string(r[:w-1]) + "…"
}

// View renders the table.
func (t ResultTable) View() string {
	if len(t.Columns) == 0 {
		return theme.Hint.Render("(no columns)")
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = lipgloss.Width(c)
	}
	rows := t.Rows
	hidden := 0
	if t.MaxRows > 0 && len(rows) > t.MaxRows {
		hidden = len(rows) - t.MaxRows
		rows = rows[:t.MaxRows]
	}
	for _, r := range rows {
		for i, c := range t.Columns {
			widths[i] = max(widths[i], lipgloss.Width(FormatCell(r[c])))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}

	pad := func(s string, w int) string {
		s = truncate(s, w)
		return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
	}

	var b strings.Builder
	head := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = theme.TableHeader.Render(pad(c, widths[i]))
		rule[i] = strings.Repeat("─", widths[i])
	}
	b.WriteString(strings.Join(head, " │ ") + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Join(rule, "─┼─")) + "\n")

	for _, r := range rows {
		cells := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			style := theme.TableCell
			if r[c] == nil {
				style = theme.TableNull
			}
			cells[i] = style.Render(pad(FormatCell(r[c]), widths[i]))
		}
		b.WriteString(strings.Join(cells, " │ ") + "\n")
	}

	footer := fmt.Sprintf("%d row(s)", len(t.Rows))
	if hidden > 0 {
		footer += fmt.Sprintf(", %d not shown", hidden)
	}
	b.WriteString(theme.Hint.Render(footer))

	out := b.String()
	if t.Width > 0 {
		out = lipgloss.NewStyle().MaxWidth(t.Width).Render(out)
	}
	return out
}
