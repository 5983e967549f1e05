// Package tui presents the tweet confirmation dialog in the terminal.
package tui

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/model"
	"github.com/mikequentel/confirmtweet/internal/snippet"
	"github.com/mikequentel/confirmtweet/internal/widget"
)

type phase int

const (
	phaseLoading phase = iota
	phaseOpen
	phaseBusy
	phaseClosed
)

type action string

const (
	actSubmit   action = "submit"
	actSuppress action = "suppress"
	actCancel   action = "cancel"
)

type button struct {
	label string
	act   action
}

type activatedMsg struct{ err error }
type doneMsg struct{ err error }

type keyMap struct {
	Next, Prev, Activate, Submit, Cancel, Quit key.Binding
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
	Activate: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "press")),
	Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "post")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c")),
}

type Model struct {
	ctx context.Context
	w   *widget.Widget

	phase    phase
	dialog   *widget.Dialog
	spinner  spinner.Model
	editor   textarea.Model
	editable bool
	buttons  []button
	focus    int

	flashes []model.Message
	err     error
	width   int

	// settled is set once the last action has returned, so its flash has
	// already been delivered.
	settled bool
}

func New(ctx context.Context, w *widget.Widget) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{ctx: ctx, w: w, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	w, ctx := m.w, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := w.Activate(ctx)
		return activatedMsg{err}
	})
}

// Flashes returns the messages shown so far.
func (m Model) Flashes() []model.Message { return m.flashes }

func (m Model) Err() error { return m.err }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.phase == phaseLoading || m.phase == phaseBusy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case shownMsg:
		return m.open(msg.d)

	case activatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.phase = phaseClosed
			m.settled = true
		}
		return m, nil

	case hiddenMsg:
		m.phase = phaseClosed
		return m, nil

	case flashMsg:
		m.flashes = append(m.flashes, model.Message(msg))
		return m, nil

	case doneMsg:
		// outcomes arrive through the bridge as hidden/flash messages,
		// always before this
		m.settled = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) open(d *widget.Dialog) (tea.Model, tea.Cmd) {
	m.dialog = d
	m.phase = phaseOpen
	s := d.Snippet()

	m.editable = d.Editable() && !s.ReadOnly(snippet.TweetField)
	m.editor = textarea.New()
	m.editor.ShowLineNumbers = false
	m.editor.CharLimit = s.MaxLength(snippet.TweetField)
	m.editor.SetWidth(modalWidth - 6)
	m.editor.SetHeight(4)
	m.editor.SetValue(s.TweetText())

	m.buttons = []button{{"Post tweet", actSubmit}}
	if s.HasSuppress {
		label := s.SuppressLabel
		if label == "" {
			label = "Don't ask again"
		}
		m.buttons = append(m.buttons, button{label, actSuppress})
	}
	m.buttons = append(m.buttons, button{"Cancel", actCancel})

	m.focus = 0
	if m.editable {
		return m, m.editor.Focus()
	}
	return m, nil
}

func (m Model) focusables() int {
	n := len(m.buttons)
	if m.editable {
		n++
	}
	return n
}

// focusedButton returns the index of the focused button, or -1 for the editor.
func (m Model) focusedButton() int {
	if m.editable {
		return m.focus - 1
	}
	return m.focus
}

func (m Model) moveFocus(delta int) (Model, tea.Cmd) {
	n := m.focusables()
	m.focus = ((m.focus+delta)%n + n) % n
	if m.editable && m.focus == 0 {
		return m, m.editor.Focus()
	}
	m.editor.Blur()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}
	switch m.phase {
	case phaseClosed:
		if m.settled {
			return m, tea.Quit
		}
		return m, nil
	case phaseLoading, phaseBusy:
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Cancel):
		return m.run(actCancel)
	case key.Matches(msg, keys.Submit):
		return m.run(actSubmit)
	case key.Matches(msg, keys.Next):
		return m.moveFocus(1)
	case key.Matches(msg, keys.Prev):
		return m.moveFocus(-1)
	case key.Matches(msg, keys.Activate) && m.focusedButton() >= 0:
		return m.run(m.buttons[m.focusedButton()].act)
	}

	if m.editable && m.focus == 0 {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// run starts a dialog action off the update loop; the widget reports back
// through the bridge.
func (m Model) run(a action) (tea.Model, tea.Cmd) {
	d, ctx := m.dialog, m.ctx
	m.editor.Blur()

	switch a {
	case actSubmit:
		var edits url.Values
		if m.editable {
			edits = url.Values{snippet.TweetField: {m.editor.Value()}}
		}
		m.phase = phaseBusy
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			_, err := d.Submit(ctx, edits)
			return doneMsg{err}
		})
	case actSuppress:
		m.phase = phaseBusy
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return doneMsg{d.Suppress(ctx)}
		})
	default:
		return m, func() tea.Msg {
			d.Dismiss()
			return doneMsg{}
		}
	}
}

func (m Model) View() string {
	var sections []string
	switch m.phase {
	case phaseLoading:
		sections = append(sections, m.spinner.View()+" Loading tweet form…")
	case phaseOpen, phaseBusy:
		sections = append(sections, m.modalView())
	}

	for _, f := range m.flashes {
		sections = append(sections, feedback.Style(f.Category).Render(feedback.PlainText(f.Text)))
	}

	if m.phase == phaseClosed {
		if m.err != nil && len(m.flashes) == 0 {
			sections = append(sections, feedback.Style(model.CategoryError).Render(m.err.Error()))
		}
		if m.settled {
			sections = append(sections, mutedStyle.Render("press any key to exit"))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) modalView() string {
	s := m.dialog.Snippet()
	title := s.Title
	if title == "" {
		title = "Tweet about this dataset?"
	}

	var body string
	if m.editable {
		body = m.editor.View()
	} else {
		body = lipgloss.NewStyle().Width(modalWidth - 6).Render(s.TweetText())
	}

	btns := make([]string, 0, len(m.buttons))
	for i, b := range m.buttons {
		st := buttonStyle
		switch {
		case m.phase == phaseBusy:
			st = buttonDisabledStyle
		case i == m.focusedButton():
			st = buttonFocusedStyle
		}
		btns = append(btns, st.Render(b.label))
	}
	row := strings.Join(btns, "  ")

	hint := mutedStyle.Render("tab focus · enter press · ctrl+s post · esc close")
	if m.phase == phaseBusy {
		hint = m.spinner.View() + mutedStyle.Render(" sending…")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		body,
		"",
		row,
		"",
		hint,
	)
	box := modalStyle.Width(modalWidth).Render(content)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
	}
	return box
}

// Run drives the dialog in a bubbletea program until the user exits. The
// bridge must be the widget's presenter and (part of) its feedback sink.
func Run(ctx context.Context, w *widget.Widget, b *Bridge, opts ...tea.ProgramOption) ([]model.Message, error) {
	p := tea.NewProgram(New(ctx, w), append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	b.Attach(p)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm := final.(Model)
	return fm.Flashes(), fm.Err()
}
