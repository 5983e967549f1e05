package tui

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/charmbracelet/huh"

	"github.com/mikequentel/confirmtweet/internal/snippet"
	"github.com/mikequentel/confirmtweet/internal/widget"
)

// LinePresenter is a plain-text presenter for accessible mode.
type LinePresenter struct {
	Out io.Writer
}

func (p LinePresenter) Show(d *widget.Dialog) error {
	title := d.Snippet().Title
	if title == "" {
		title = "Tweet about this dataset?"
	}
	_, err := fmt.Fprintln(p.Out, title)
	return err
}

func (p LinePresenter) Hide(*widget.Dialog) {}

// RunAccessible asks for the tweet and the action with a line-oriented huh
// form instead of the full-screen modal. w must use a LinePresenter.
func RunAccessible(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer) error {
	d, err := w.Activate(ctx)
	if err != nil {
		return err
	}
	s := d.Snippet()
	text := s.TweetText()
	choice := actSubmit

	opts := []huh.Option[action]{huh.NewOption("Post tweet", actSubmit)}
	if s.HasSuppress {
		label := s.SuppressLabel
		if label == "" {
			label = "Don't ask again"
		}
		opts = append(opts, huh.NewOption(label, actSuppress))
	}
	opts = append(opts, huh.NewOption("Cancel", actCancel))

	var tweetField huh.Field
	if d.Editable() && !s.ReadOnly(snippet.TweetField) {
		t := huh.NewText().Title("Tweet").Value(&text)
		if n := s.MaxLength(snippet.TweetField); n > 0 {
			t = t.CharLimit(n)
		}
		tweetField = t
	} else {
		tweetField = huh.NewNote().Title("Tweet").Description(text)
	}

	form := huh.NewForm(
		huh.NewGroup(
			tweetField,
			huh.NewSelect[action]().Title("What should happen?").Options(opts...).Value(&choice),
		),
	).WithAccessible(true).WithInput(in).WithOutput(out)

	if err := form.RunWithContext(ctx); err != nil {
		d.Dismiss()
		return err
	}
	return apply(ctx, d, choice, text)
}

func apply(ctx context.Context, d *widget.Dialog, a action, text string) error {
	switch a {
	case actSubmit:
		_, err := d.Submit(ctx, url.Values{snippet.TweetField: {text}})
		return err
	case actSuppress:
		return d.Suppress(ctx)
	default:
		d.Dismiss()
		return nil
	}
}
