package tui

import (
	"context"
	"net/url"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/model"
	"github.com/mikequentel/confirmtweet/internal/widget"
)

const editTweet = `<h3 class="modal-title">Tweet about "Beetles"?</h3>
<form id="edit-tweet-form"><textarea name="tweet_text" maxlength="280">Hello world</textarea></form>
<button class="no-tweet">Never again</button>`

type stubSnippets struct{ html string }

func (s stubSnippets) GetTemplate(context.Context, string, model.WidgetConfig) (string, error) {
	return s.html, nil
}

type stubPoster struct {
	body  string
	posts []url.Values
	paths []string
}

func (p *stubPoster) PostForm(_ context.Context, path string, form url.Values) ([]byte, error) {
	p.paths = append(p.paths, path)
	p.posts = append(p.posts, form)
	return []byte(p.body), nil
}

// harness runs a Model without a program: bridge messages are queued and
// fed back into Update by drain.
type harness struct {
	m      Model
	poster *stubPoster
	queue  []tea.Msg
}

func newHarness(t *testing.T, cfg model.WidgetConfig) *harness {
	t.Helper()
	h := &harness{poster: &stubPoster{body: `{"success": true, "tweet": "edited"}`}}
	b := NewBridge()
	b.send = func(msg tea.Msg) { h.queue = append(h.queue, msg) }

	w, err := widget.New(cfg, widget.Deps{
		Snippets: stubSnippets{editTweet},
		HTTP:     h.poster,
		Feedback: b,
		Modal:    b,
	})
	if err != nil {
		t.Fatal(err)
	}
	h.m = New(context.Background(), w)
	return h
}

// exec runs a command (and nested batches) synchronously, queueing results.
func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.exec(c)
		}
	case nil:
	default:
		h.queue = append(h.queue, msg)
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) drain() {
	for len(h.queue) > 0 {
		msg := h.queue[0]
		h.queue = h.queue[1:]
		h.send(msg)
	}
}

func (h *harness) activate() {
	h.exec(activateOnly(h.m))
	h.drain()
}

// activateOnly skips the spinner tick from Init.
func activateOnly(m Model) tea.Cmd {
	w, ctx := m.w, m.ctx
	return func() tea.Msg {
		_, err := w.Activate(ctx)
		return activatedMsg{err}
	}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ===================== activation =====================

func TestModel_OpensDialog(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	if h.m.phase != phaseOpen {
		t.Fatalf("phase = %v, want open", h.m.phase)
	}
	if !h.m.editable || h.m.editor.Value() != "Hello world" {
		t.Errorf("editor = %q editable=%v", h.m.editor.Value(), h.m.editable)
	}
	if h.m.editor.CharLimit != 280 {
		t.Errorf("CharLimit = %d, want the form's maxlength", h.m.editor.CharLimit)
	}
	labels := []string{}
	for _, b := range h.m.buttons {
		labels = append(labels, b.label)
	}
	if strings.Join(labels, ",") != "Post tweet,Never again,Cancel" {
		t.Errorf("buttons = %v", labels)
	}
	view := h.m.View()
	if !strings.Contains(view, `Tweet about "Beetles"?`) || !strings.Contains(view, "Never again") {
		t.Errorf("view missing content:\n%s", view)
	}
}

// ===================== submit =====================

func TestModel_SubmitEditedTweet(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	h.m.editor.SetValue("edited")
	h.exec(h.send(press("ctrl+s")))
	if h.m.phase != phaseBusy {
		t.Errorf("phase after submit = %v, want busy", h.m.phase)
	}
	h.drain()

	if len(h.poster.posts) != 1 || h.poster.posts[0].Get("tweet_text") != "edited" {
		t.Fatalf("posts = %v", h.poster.posts)
	}
	if h.m.phase != phaseClosed {
		t.Errorf("phase = %v, want closed", h.m.phase)
	}
	want := []model.Message{{Text: `Tweet posted!<br>Your tweet: "edited"`, Category: model.CategorySuccess}}
	if len(h.m.Flashes()) != 1 || h.m.Flashes()[0] != want[0] {
		t.Errorf("flashes = %+v", h.m.Flashes())
	}
	if !strings.Contains(h.m.View(), `Your tweet: "edited"`) {
		t.Errorf("flash not rendered:\n%s", h.m.View())
	}

	// any key exits once closed
	if cmd := h.send(press("x")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestModel_ButtonsViaKeyboard(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	// editor -> Post tweet -> Never again
	h.exec(h.send(press("tab")))
	h.exec(h.send(press("tab")))
	if h.m.focusedButton() != 1 {
		t.Fatalf("focused button = %d, want 1", h.m.focusedButton())
	}
	h.exec(h.send(press("enter")))
	h.drain()

	if len(h.poster.paths) != 1 || h.poster.paths[0] != "/dataset/disable-tweet-popup" {
		t.Errorf("paths = %v", h.poster.paths)
	}
	if h.m.phase != phaseClosed || len(h.m.Flashes()) != 0 {
		t.Errorf("phase = %v flashes = %v", h.m.phase, h.m.Flashes())
	}
}

func TestModel_EscDismisses(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	h.exec(h.send(press("esc")))
	h.drain()

	if h.m.phase != phaseClosed {
		t.Errorf("phase = %v, want closed", h.m.phase)
	}
	if h.m.dialog.State() != widget.StateAbandoned {
		t.Errorf("dialog state = %v", h.m.dialog.State())
	}
	if len(h.poster.posts) != 0 {
		t.Error("dismiss issued a request")
	}
}

func TestModel_ReadOnlyWhenEditDisabled(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123", DisableEdit: true})
	h.activate()

	if h.m.editable {
		t.Fatal("editor should be read-only")
	}
	if h.m.focusedButton() != 0 {
		t.Errorf("focus should start on the first button, got %d", h.m.focusedButton())
	}
	h.exec(h.send(press("enter")))
	h.drain()
	if h.poster.posts[0].Get("tweet_text") != "Hello world" {
		t.Errorf("posted %q", h.poster.posts[0].Get("tweet_text"))
	}
}

func TestModel_KeysIgnoredWhileBusy(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	cmd := h.send(press("ctrl+s")) // not executed: request stays pending
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if again := h.send(press("ctrl+s")); again != nil {
		t.Error("second submit accepted while busy")
	}
}

func TestModel_KeyBeforeFlashDoesNotQuit(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.activate()

	h.exec(h.send(press("ctrl+s")))
	// deliver up to the hide; the flash and completion are still queued
	for len(h.queue) > 0 {
		msg := h.queue[0]
		h.queue = h.queue[1:]
		h.send(msg)
		if _, ok := msg.(hiddenMsg); ok {
			break
		}
	}
	if h.m.phase != phaseClosed {
		t.Fatalf("phase = %v, want closed", h.m.phase)
	}
	if cmd := h.send(press("x")); cmd != nil {
		t.Error("key quit before the flash arrived")
	}
	if strings.Contains(h.m.View(), "press any key") {
		t.Error("exit hint shown before the flash arrived")
	}

	h.drain()
	if len(h.m.Flashes()) != 1 {
		t.Fatalf("flashes = %+v", h.m.Flashes())
	}
	if cmd := h.send(press("x")); cmd == nil {
		t.Error("expected quit command once settled")
	}
}

// ===================== feedback region =====================

func TestModel_FlashOnLoadError(t *testing.T) {
	h := newHarness(t, model.WidgetConfig{PackageID: "abc123"})
	h.send(flashMsg{Text: widget.LoadFailed, Category: model.CategoryError})
	h.send(activatedMsg{err: context.DeadlineExceeded})

	if h.m.phase != phaseClosed || h.m.Err() == nil {
		t.Errorf("phase = %v err = %v", h.m.phase, h.m.Err())
	}
	view := h.m.View()
	if !strings.Contains(view, widget.LoadFailed) || !strings.Contains(view, "press any key") {
		t.Errorf("view:\n%s", view)
	}
}

var _ feedback.Sink = (*Bridge)(nil)
var _ widget.Presenter = (*Bridge)(nil)
var _ widget.Presenter = LinePresenter{}
