package tui

import (
	"context"
	"errors"
	"strings"

	"bmi-client/internal/bmi"
	"bmi-client/internal/coordinator"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	title       = "BMI Calculator - Client"
	buttonLabel = "Calculate BMI"
)

type focus int

const (
	focusWeight focus = iota
	focusHeight
	focusButton
	focusCount
)

// notice is a modal message; it swallows keys until dismissed.
type notice struct {
	title   string
	message string
}

type model struct {
	theme Theme
	deps  Deps
	ctx   context.Context

	weight  textinput.Model
	height  textinput.Model
	spinner spinner.Model
	focus   focus

	busy   bool
	status string
	result string
	notice *notice
	width  int
}

// Run shows the calculator until the user quits or ctx is done. The
// controller's loop runs for the lifetime of the program.
func Run(ctx context.Context, deps Deps) error {
	if deps.Controller == nil {
		return errors.New("tui: nil controller")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen(), tea.WithContext(ctx))

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- deps.Controller.Run(ctx, NewCollaborator(p.Send))
	}()

	_, err := p.Run()
	cancel()

	if lerr := <-loopErr; lerr != nil && err == nil {
		err = lerr
	}
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func newModel(ctx context.Context, deps Deps) model {
	weight := textinput.New()
	weight.Placeholder = "70"
	weight.Prompt = ""
	weight.CharLimit = 16
	weight.Width = 16

	height := textinput.New()
	height.Placeholder = "175"
	height.Prompt = ""
	height.CharLimit = 16
	height.Width = 16

	weight.Focus()

	return model{
		theme:   DefaultTheme(),
		deps:    deps,
		ctx:     ctx,
		weight:  weight,
		height:  height,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		focus:   focusWeight,
		status:  coordinator.StatusReady,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case validationFailedMsg:
		m.notice = &notice{title: msg.title, message: msg.message}
		switch msg.field {
		case bmi.FieldWeight:
			return m, m.setFocus(focusWeight)
		case bmi.FieldHeight:
			return m, m.setFocus(focusHeight)
		}
		return m, nil

	case startedMsg:
		m.busy = true
		m.status = coordinator.StatusSending
		m.result = ""
		m.weight.Blur()
		m.height.Blur()
		return m, m.spinner.Tick

	case succeededMsg:
		m.result = msg.rendered
		m.status = coordinator.StatusDone
		return m, nil

	case failedMsg:
		m.status = coordinator.StatusError
		m.notice = &notice{title: "Error", message: msg.message}
		return m, nil

	case finishedMsg:
		m.busy = false
		return m, m.setFocus(m.focus)

	case triggerFailedMsg:
		m.deps.Logger.Warn("trigger rejected", zap.Error(msg.err))
		m.status = coordinator.StatusError
		m.notice = &notice{title: "Error", message: "Error: " + msg.err.Error()}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.notice != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.notice = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m, tea.Quit

	case "tab", "down":
		return m, m.setFocus((m.focus + 1) % focusCount)

	case "shift+tab", "up":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case "enter":
		return m, m.trigger()

	case " ":
		if m.focus == focusButton {
			return m, m.trigger()
		}
	}

	if m.busy || m.focus == focusButton {
		return m, nil
	}
	return m.updateFocused(msg)
}

// trigger is a no-op while the button is disabled.
func (m model) trigger() tea.Cmd {
	if m.busy {
		return nil
	}
	return cmdTrigger(m.ctx, m.deps.Controller, m.weight.Value(), m.height.Value())
}

func (m *model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.weight.Blur()
	m.height.Blur()
	if m.busy {
		return nil
	}

	switch f {
	case focusWeight:
		return m.weight.Focus()
	case focusHeight:
		return m.height.Focus()
	}
	return nil
}

func (m model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusWeight:
		m.weight, cmd = m.weight.Update(msg)
	case focusHeight:
		m.height, cmd = m.height.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)

	header := m.theme.Title.Render(title) + "\n" +
		m.theme.Subtitle.Render("POST "+m.deps.APIURL) + "\n"

	if m.notice != nil {
		card := m.theme.Notice.Render(
			m.theme.Title.Render(m.notice.title) + "\n\n" +
				m.notice.message + "\n\n" +
				m.theme.Help.Render("enter/esc dismiss"),
		)
		return wrap.Render(header + "\n" + card)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.theme.Label.Render("Weight (kg):"), m.weight.View()),
		lipgloss.JoinHorizontal(lipgloss.Top, m.theme.Label.Render("Height (cm):"), m.height.View()),
		"",
		m.buttonView(),
	)

	result := m.result
	if result == "" {
		result = m.theme.Help.Render("(empty)")
	}
	resultCard := m.theme.Card.Render(m.theme.Title.Render("Result") + "\n" + strings.TrimRight(result, "\n"))

	status := m.status
	if m.busy {
		status = m.spinner.View() + " " + status
	}

	help := m.theme.Help.Render("tab/shift+tab move • enter calculate • esc quit")

	return wrap.Render(header + "\n" +
		m.theme.Card.Render(form) + "\n" +
		resultCard + "\n" +
		m.theme.Status.Render(status) + "\n\n" +
		help)
}

func (m model) buttonView() string {
	switch {
	case m.busy:
		return m.theme.Disabled.Render(buttonLabel)
	case m.focus == focusButton:
		return m.theme.Focused.Render(buttonLabel)
	default:
		return m.theme.Button.Render(buttonLabel)
	}
}
