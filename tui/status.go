package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nathoo/neoncore/engine"
)

var titleCase = cases.Title(language.English)

// statusText lays out the left and right halves of the status bar.
func statusText(st engine.Status) (left, right string) {
	mode := titleCase.String(strings.ReplaceAll(string(st.State), "_", " "))
	if st.Handle == "" {
		return " NeonCore | jack in, choom", mode + " "
	}
	left = fmt.Sprintf(" %s | HP %d/%d | %s", st.Handle, st.HP, st.MaxHP, st.Location)
	return left, mode + " "
}

func (m Model) renderStatusBar() string {
	left, right := statusText(m.status)
	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
