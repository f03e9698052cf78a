package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/neoncore/engine"
	"github.com/nathoo/neoncore/shell"
)

// rawLine is one unstyled transcript line, kept so the transcript can be
// re-wrapped on resize.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool
}

// Model is the Bubble Tea model. It never touches the engine directly:
// everything arrives through the session.
type Model struct {
	session *Session

	viewport viewport.Model
	input    textinput.Model
	history  *History
	rawLines []rawLine
	status   engine.Status

	waiting  bool // the engine is blocked in Prompt
	width    int
	height   int
	ready    bool
	quitting bool
	err      error
}

func New(s *Session) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt
	return Model{
		session: s,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run shows the UI and runs loop, the engine's command loop, on its own
// goroutine. It returns when either side finishes; end of input and
// cancellation are not errors.
func Run(ctx context.Context, s *Session, loop func(context.Context) (shell.Result, error), opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(s), opts...)

	loopErr := make(chan error, 1)
	go func() {
		_, err := loop(ctx)
		s.finish(err)
		loopErr <- err
	}()

	_, err := p.Run()
	s.Close()
	cancel()
	if lerr := <-loopErr; lerr != nil && !errors.Is(lerr, io.EOF) && !errors.Is(lerr, context.Canceled) {
		return lerr
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.session.wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := max(1, m.height-2) // status bar + input line
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			m.quitting = true
			m.session.Close()
			return m, tea.Quit
		case "enter":
			return m.handleEnter()
		case "tab":
			return m.complete(), nil
		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil
		case "down":
			next, _ := m.history.Next()
			m.input.SetValue(next)
			m.input.CursorEnd()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case outputMsg:
		m = m.appendText(msg.text)
		return m, m.session.wait()

	case promptMsg:
		// Everything up to the last line of a prompt is transcript.
		head, last := splitPrompt(msg.prompt)
		if head != "" {
			m = m.appendText(head)
		}
		m.input.Prompt = last
		m.waiting = true
		return m, m.session.wait()

	case statusMsg:
		m.status = msg.status
		return m, m.session.wait()

	case doneMsg:
		m.err = msg.err
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func splitPrompt(prompt string) (head, last string) {
	i := strings.LastIndexByte(prompt, '\n')
	if i < 0 {
		return "", prompt
	}
	return prompt[:i], prompt[i+1:]
}

// handleEnter hands the input line to the engine. Input typed while the
// engine is busy stays in the box.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if !m.waiting {
		return m, nil
	}
	line := m.input.Value()
	m.history.Push(strings.TrimSpace(line))
	m.rawLines = append(m.rawLines, rawLine{text: m.input.Prompt + line, isInput: true})
	m.refreshViewport()

	m.input.SetValue("")
	m.input.Prompt = ""
	m.waiting = false
	m.session.submit(line)
	return m, nil
}

// complete asks the active interpreter for candidates. One candidate is
// inserted; several are narrowed to their common prefix or listed.
func (m Model) complete() Model {
	if !m.waiting {
		return m
	}
	// The text input counts its cursor in runes; completion works in bytes.
	line := m.input.Value()
	runes := []rune(line)
	pos := len(string(runes[:min(m.input.Position(), len(runes))]))
	cands := m.session.Completers().Complete(line, pos)
	if len(cands) == 0 {
		return m
	}
	word := line[strings.LastIndexAny(line[:pos], " \t")+1 : pos]
	ins := cands[0]
	if len(cands) > 1 {
		ins = shell.CommonPrefix(cands)
		if len(ins) <= len(word) {
			listed := make([]string, len(cands))
			for i, c := range cands {
				listed[i] = strings.TrimSpace(c)
			}
			return m.appendText(shell.Columnize(listed, max(20, m.width)))
		}
	}
	line, pos = shell.Expand(line, pos, ins)
	m.input.SetValue(line)
	m.input.SetCursor(utf8.RuneCountInString(line[:pos]))
	return m
}

// appendText adds one block of engine output to the transcript.
func (m Model) appendText(text string) Model {
	for _, line := range strings.Split(text, "\n") {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles the transcript at the current
// width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := max(10, m.width)
	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
		} else {
			styled = append(styled, render(wrapped, rl.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Jacking in..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// Err returns the engine error that ended the session, if any.
func (m Model) Err() error { return m.err }

// viewportKeyMap leaves up and down to input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+f")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
