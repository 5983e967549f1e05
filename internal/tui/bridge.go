package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mikequentel/confirmtweet/internal/model"
	"github.com/mikequentel/confirmtweet/internal/widget"
)

type shownMsg struct{ d *widget.Dialog }
type hiddenMsg struct{}
type flashMsg model.Message

// Bridge is the widget's presenter and feedback sink inside a bubbletea
// program. Calls are forwarded as messages, so Hide is always seen by the
// program before the Flash that follows it.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func NewBridge() *Bridge { return &Bridge{} }

// Attach routes messages to p. Messages sent before Attach are dropped.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = p.Send
}

func (b *Bridge) forward(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) Show(d *widget.Dialog) error {
	b.forward(shownMsg{d})
	return nil
}

func (b *Bridge) Hide(*widget.Dialog) { b.forward(hiddenMsg{}) }

func (b *Bridge) Flash(m model.Message) { b.forward(flashMsg(m)) }
