package widget

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/model"
	"github.com/mikequentel/confirmtweet/internal/snippet"
)

type State int

const (
	StateOpen State = iota
	StateSubmitted
	StateSuppressed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateSubmitted:
		return "submitted"
	case StateSuppressed:
		return "suppressed"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

func (s State) Terminal() bool { return s != StateOpen }

// Dialog is one presented modal. All transitions out of StateOpen are final.
type Dialog struct {
	w       *Widget
	snippet *snippet.Snippet
	log     *slog.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	hidden   bool
}

func (d *Dialog) Snippet() *snippet.Snippet  { return d.snippet }
func (d *Dialog) Config() model.WidgetConfig { return d.w.cfg }

// Editable reports whether edits to the form are honoured.
func (d *Dialog) Editable() bool { return !d.w.cfg.DisableEdit }

func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dialog) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

func (d *Dialog) begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Terminal() {
		return ErrClosed
	}
	if d.inFlight {
		return ErrInFlight
	}
	d.inFlight = true
	return nil
}

// finish moves to a terminal state and hides the modal if it is still shown.
func (d *Dialog) finish(s State) {
	d.mu.Lock()
	d.inFlight = false
	if !d.state.Terminal() {
		d.state = s
	}
	hide := !d.hidden
	d.hidden = true
	d.mu.Unlock()

	if hide {
		d.w.deps.Modal.Hide(d)
	}
}

// Submit posts the form, merged with edits, to the dataset's tweet endpoint.
// The modal is hidden before the outcome is flashed. The returned error is
// only ErrClosed or ErrInFlight; request failures are reported as the
// unknown-error flash.
func (d *Dialog) Submit(ctx context.Context, edits url.Values) (model.Message, error) {
	if err := d.begin(); err != nil {
		return model.Message{}, err
	}
	form := d.snippet.Merge(edits, d.Editable())

	body, err := d.w.deps.HTTP.PostForm(ctx, d.w.tweetPath(), form)
	if err != nil {
		d.log.Warn("tweet submission failed", "err", err)
	}
	res := decodeResult(body, err)

	d.finish(StateSubmitted)

	msg := feedback.Classify(res)
	d.w.deps.Feedback.Flash(msg)
	d.log.Info("tweet submitted", "category", msg.Category, "result", res != nil)
	return msg, nil
}

// Suppress asks CKAN to stop showing the popup. The modal is hidden once the
// request completes, whatever the response. Request errors are logged and
// returned but never flashed.
func (d *Dialog) Suppress(ctx context.Context) error {
	if err := d.begin(); err != nil {
		return err
	}
	_, err := d.w.deps.HTTP.PostForm(ctx, disablePath(), nil)
	if err != nil {
		d.log.Warn("disable tweet popup failed", "err", err)
	}
	d.finish(StateSuppressed)
	return err
}

// Dismiss closes the modal without any request. It is a no-op on a closed
// dialog; a request still in flight completes normally.
func (d *Dialog) Dismiss() {
	d.mu.Lock()
	if d.state.Terminal() || d.hidden {
		d.mu.Unlock()
		return
	}
	if !d.inFlight {
		d.state = StateAbandoned
	}
	d.hidden = true
	d.mu.Unlock()

	d.w.deps.Modal.Hide(d)
	d.log.Debug("dialog dismissed")
}
