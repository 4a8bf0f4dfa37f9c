package repl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/mare/engine"
	"github.com/ardnew/mare/log"
)

const prompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	pathStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	session      *session
	history      *History
	logger       log.Logger
	input        textinput.Model
	comp         completion
	preTabText   string // input text before tab-cycling began
	historyIdx   int
	selected     int // selected candidate while tab-cycling, or -1
	preTabCursor int
	width        int
	quitting     bool
}

// Run browses the keys of eng interactively until the user quits.
// Diagnostics the engine reports to diags are printed after each command.
// Command lines are saved to the history file historyPath.
func Run(
	ctx context.Context,
	eng *engine.Engine,
	diags *engine.Collector,
	historyPath string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", historyPath),
			slog.Any("error", err),
		)
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("file", eng.File()),
		slog.Int("history", history.Len()),
	)

	m := newModel(ctx, newSession(eng, diags), history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = renderPrompt(s.pwd())
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    s,
		history:    history,
		logger:     logger,
		input:      ti,
		historyIdx: history.Len(),
		selected:   -1,
		width:      defaultWidth,
	}
}

func renderPrompt(pwd string) string {
	return pathStyle.Render(pwd) + " " + promptStyle.Render(prompt)
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		b.WriteString(hintStyle.Render(
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)) +
				"/" + strconv.Itoa(m.history.Len()),
		))

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render(
			"Type: " + strings.Join(commands, ", "),
		))

	case len(m.comp.matches) > 0:
		b.WriteString(renderCandidateBar(m.comp.matches, m.selected, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.selected >= 0 {
			// Accept the tab candidate without executing.
			m.refresh()

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.selected >= 0 {
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// refresh recomputes the completion for the input and ends tab-cycling.
func (m *model) refresh() {
	m.selected = -1
	m.comp = m.session.complete(m.input.Value(), m.input.Position())
}

// cycle selects the next (dir > 0) or previous candidate and writes it
// into the input. A single candidate is accepted immediately.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)
	if n == 0 {
		return m
	}

	if m.selected < 0 {
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
	}

	switch {
	case n == 1:
		m.replace(m.comp.matches[0].Str)
		m.refresh()

		return m

	case m.selected < 0 && dir > 0:
		m.selected = 0

	case m.selected < 0:
		m.selected = n - 1

	default:
		m.selected = (m.selected + dir + n) % n
	}

	m.replace(m.comp.matches[m.selected].Str)

	return m
}

// replace substitutes text for the completed part of the input.
func (m *model) replace(text string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.comp.start] + text + input[m.comp.end:])
	m.input.SetCursor(m.comp.start + len(text))
	m.comp.end = m.comp.start + len(text)
}

// recall shows history entry i, or an empty line past the newest entry.
func (m model) recall(i int) model {
	if i < 0 {
		return m
	}

	m.historyIdx = min(i, m.history.Len())

	line, err := m.history.Get(m.historyIdx)
	if err != nil {
		line = ""
	}

	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refresh()
	m.comp.matches = nil

	return m
}

func (m model) execute() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	if err := m.history.Write(line); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err),
		)
	}

	echo := tea.Println(renderPrompt(m.session.pwd()) + inputStyle.Render(line))

	m.input.SetValue("")
	m.historyIdx = m.history.Len()

	res, err := m.session.exec(line)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("input", line),
		slog.Int("diagnostics", len(res.diagnostics)),
		slog.Any("error", err),
	)

	m.input.Prompt = renderPrompt(m.session.pwd())
	m.refresh()

	cmds := []tea.Cmd{echo}

	for _, d := range res.diagnostics {
		cmds = append(cmds, tea.Println(errorStyle.Render(d.String())))
	}

	if err != nil {
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	if len(res.out) > 0 {
		cmds = append(cmds, tea.Println(resultStyle.Render(strings.Join(res.out, "\n"))))
	}

	switch {
	case res.quit:
		m.quitting = true

		cmds = append(cmds, tea.Quit)

	case res.clear:
		return m, tea.ClearScreen
	}

	return m, tea.Sequence(cmds...)
}
