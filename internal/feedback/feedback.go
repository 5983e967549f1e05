// Package feedback renders flash messages for tweet submissions.
package feedback

import (
	"fmt"
	"sync"

	"github.com/mikequentel/confirmtweet/internal/model"
)

// Sink receives flash messages. Implementations must be safe for concurrent use.
type Sink interface {
	Flash(msg model.Message)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(model.Message)

func (f SinkFunc) Flash(msg model.Message) { f(msg) }

func Error(s Sink, text string) {
	s.Flash(model.Message{Text: text, Category: model.CategoryError})
}

func Success(s Sink, text string) {
	s.Flash(model.Message{Text: text, Category: model.CategorySuccess})
}

// Render returns the HTML node appended to the flash-messages region. The
// message is inserted as-is; it may carry <br> line breaks.
func Render(msg model.Message) string {
	return `<div class="alert ` + string(msg.Category) + `">` + msg.Text + `</div>`
}

// --- message texts ---

const unknownError = "Tweet not posted due to unknown error."

func UnknownError() string { return unknownError }

func Rejected(reason, tweet string) string {
	return fmt.Sprintf(`Tweet not posted! Error message: "%s".<br>Your tweet: "%s".`, reason, tweet)
}

func Posted(tweet string) string {
	return fmt.Sprintf(`Tweet posted!<br>Your tweet: "%s"`, tweet)
}

// Classify picks the flash for a submission result. A nil result is always
// an unknown error, an unsuccessful one always shows the reason, and a
// successful one always echoes the tweet.
func Classify(res *model.SubmissionResult) model.Message {
	switch {
	case res == nil:
		return model.Message{Text: UnknownError(), Category: model.CategoryError}
	case !res.Success:
		return model.Message{Text: Rejected(res.Reason, res.Tweet), Category: model.CategoryError}
	default:
		return model.Message{Text: Posted(res.Tweet), Category: model.CategorySuccess}
	}
}

// Region is an in-memory .flash-messages container.
type Region struct {
	mu    sync.Mutex
	nodes []string
	msgs  []model.Message
}

func NewRegion() *Region { return &Region{} }

func (r *Region) Flash(msg model.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, Render(msg))
	r.msgs = append(r.msgs, msg)
}

// HTML returns the rendered nodes in append order.
func (r *Region) HTML() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.nodes...)
}

func (r *Region) Messages() []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Message(nil), r.msgs...)
}

// Multi fans a flash out to every sink in order.
type Multi []Sink

func (m Multi) Flash(msg model.Message) {
	for _, s := range m {
		if s != nil {
			s.Flash(msg)
		}
	}
}
