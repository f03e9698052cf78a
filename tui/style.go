package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("53")).
			Foreground(lipgloss.Color("51")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("201"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	styleDanger = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("201"))
)

type lineKind int

const (
	kindNarration lineKind = iota
	kindHeading
	kindExits
	kindDialogue
	kindSystem
	kindSuccess
	kindDanger
)

// classifyLine picks a style from the shape of an output line.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[FLATLINED]"),
		strings.HasPrefix(line, "Failure!"),
		strings.Contains(line, "roughs you up"):
		return kindDanger
	case strings.HasPrefix(line, "[SUCCESS]"),
		strings.HasPrefix(line, "Success!"):
		return kindSuccess
	case strings.HasPrefix(line, "=="):
		return kindHeading
	case strings.HasPrefix(line, "["):
		return kindSystem
	case strings.HasPrefix(line, "Exits:"),
		strings.HasPrefix(line, "You see:"),
		strings.HasPrefix(line, "On the ground:"):
		return kindExits
	case isSpeech(line):
		return kindDialogue
	default:
		return kindNarration
	}
}

// isSpeech reports a quoted run of more than five characters.
func isSpeech(line string) bool {
	open, n := false, 0
	for _, r := range line {
		switch {
		case r == '\'' && open && n > 5:
			return true
		case r == '\'':
			open, n = !open, 0
		case open:
			n++
		}
	}
	return false
}

func render(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindDanger:
		return styleDanger.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap breaks a single line at spaces to fit width display cells.
// Leading indentation is kept so ASCII art is not reflowed unless it is
// too wide.
func wordWrap(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		switch {
		case i == 0:
			lineLen = w
		case lineLen+1+w > width:
			b.WriteString("\n")
			lineLen = w
		default:
			b.WriteString(" ")
			lineLen += 1 + w
		}
		b.WriteString(word)
	}
	return b.String()
}
