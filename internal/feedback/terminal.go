package feedback

import (
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/mikequentel/confirmtweet/internal/model"
)

var (
	errorColor   = lipgloss.Color("196")
	successColor = lipgloss.Color("42")

	alertError = lipgloss.NewStyle().
			Foreground(errorColor).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(errorColor).
			PaddingLeft(1)

	alertSuccess = lipgloss.NewStyle().
			Foreground(successColor).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(successColor).
			PaddingLeft(1)
)

var reBreak = regexp.MustCompile(`(?i)<br\s*/?>`)

// PlainText turns the flash markup into terminal text.
func PlainText(text string) string {
	return reBreak.ReplaceAllString(text, "\n")
}

// Style returns the lipgloss style for a category.
func Style(c model.Category) lipgloss.Style {
	if c == model.CategorySuccess {
		return alertSuccess
	}
	return alertError
}

// Terminal writes styled flashes to a writer.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Flash(msg model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, Style(msg.Category).Render(PlainText(msg.Text)))
}
