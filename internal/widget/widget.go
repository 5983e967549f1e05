// Package widget implements the tweet confirmation dialog: it fetches the
// edit_tweet snippet for a dataset, presents it as a modal and posts the
// (possibly edited) tweet or the "don't ask again" request back to CKAN.
//
// Every operation blocks until its request completes; callers that want
// fire-and-forget behaviour run them on their own goroutine (the terminal
// UI runs them as bubbletea commands). There is no retry.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/mikequentel/confirmtweet/internal/ckan"
	"github.com/mikequentel/confirmtweet/internal/feedback"
	"github.com/mikequentel/confirmtweet/internal/model"
	"github.com/mikequentel/confirmtweet/internal/snippet"
)

const DefaultTemplate = "edit_tweet.html"

// LoadFailed is flashed when the snippet cannot be fetched or parsed.
const LoadFailed = "Tweet form could not be loaded."

var (
	ErrMissingDependency = errors.New("widget: missing dependency")
	ErrAlreadyActive     = errors.New("widget: a dialog is already open")
	ErrInFlight          = errors.New("widget: a request is already in flight")
	ErrClosed            = errors.New("widget: dialog is closed")
)

// SnippetFetcher renders a named template with the widget config as params.
type SnippetFetcher interface {
	GetTemplate(ctx context.Context, name string, cfg model.WidgetConfig) (string, error)
}

// Poster posts a url-encoded form (empty for no payload) and returns the body.
type Poster interface {
	PostForm(ctx context.Context, path string, form url.Values) ([]byte, error)
}

// Presenter shows and hides the modal. Hide is called at most once per dialog.
type Presenter interface {
	Show(d *Dialog) error
	Hide(d *Dialog)
}

type Deps struct {
	Snippets SnippetFetcher
	HTTP     Poster
	Feedback feedback.Sink
	Modal    Presenter
}

type Widget struct {
	cfg      model.WidgetConfig
	deps     Deps
	template string
	log      *slog.Logger

	mu     sync.Mutex
	active *Dialog
	busy   bool
}

type Option func(*Widget)

func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.log = l
		}
	}
}

func WithTemplate(name string) Option {
	return func(w *Widget) {
		if name != "" {
			w.template = name
		}
	}
}

func New(cfg model.WidgetConfig, deps Deps, opts ...Option) (*Widget, error) {
	if cfg.PackageID == "" {
		return nil, model.ErrMissingPackageID
	}
	switch {
	case deps.Snippets == nil:
		return nil, fmt.Errorf("%w: snippet fetcher", ErrMissingDependency)
	case deps.HTTP == nil:
		return nil, fmt.Errorf("%w: http poster", ErrMissingDependency)
	case deps.Feedback == nil:
		return nil, fmt.Errorf("%w: feedback sink", ErrMissingDependency)
	case deps.Modal == nil:
		return nil, fmt.Errorf("%w: presenter", ErrMissingDependency)
	}
	w := &Widget{
		cfg:      cfg,
		deps:     deps,
		template: DefaultTemplate,
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

func (w *Widget) Config() model.WidgetConfig { return w.cfg }

// Activate fetches the snippet, builds the dialog and presents it. Only one
// activation may be pending or open at a time.
func (w *Widget) Activate(ctx context.Context) (*Dialog, error) {
	w.mu.Lock()
	if w.busy || (w.active != nil && !w.active.State().Terminal()) {
		w.mu.Unlock()
		return nil, ErrAlreadyActive
	}
	w.busy = true
	w.mu.Unlock()

	d, err := w.activate(ctx)

	w.mu.Lock()
	w.busy = false
	if err == nil {
		w.active = d
	}
	w.mu.Unlock()
	return d, err
}

func (w *Widget) activate(ctx context.Context) (*Dialog, error) {
	log := w.log.With("pkgid", w.cfg.PackageID)

	html, err := w.deps.Snippets.GetTemplate(ctx, w.template, w.cfg)
	if err != nil {
		log.Warn("snippet fetch failed", "template", w.template, "err", err)
		feedback.Error(w.deps.Feedback, LoadFailed)
		return nil, fmt.Errorf("fetch %s: %w", w.template, err)
	}
	s, err := snippet.Parse(html)
	if err != nil {
		log.Warn("snippet unusable", "template", w.template, "err", err)
		feedback.Error(w.deps.Feedback, LoadFailed)
		return nil, fmt.Errorf("parse %s: %w", w.template, err)
	}

	d := &Dialog{w: w, snippet: s, log: log}
	if err := w.deps.Modal.Show(d); err != nil {
		return nil, fmt.Errorf("show dialog: %w", err)
	}
	log.Debug("dialog shown", "fields", s.Names(), "suppress", s.HasSuppress)
	return d, nil
}

// decodeResult maps a submission response to a result. Transport errors and
// bodies that are empty, null or not a JSON object all become nil.
func decodeResult(body []byte, err error) *model.SubmissionResult {
	if err != nil {
		return nil
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	var res model.SubmissionResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil
	}
	return &res
}

// tweetPath and disablePath are the CKAN routes for the dialog's two actions.
func (w *Widget) tweetPath() string { return ckan.TweetPath(w.cfg.PackageID) }

func disablePath() string { return ckan.DisablePopupPath }
