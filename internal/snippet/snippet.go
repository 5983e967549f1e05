// Package snippet parses the server-rendered edit_tweet.html fragment.
package snippet

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	FormID        = "edit-tweet-form"
	SuppressClass = "no-tweet"
	TweetField    = "tweet_text"
)

var ErrFormNotFound = errors.New("snippet has no #" + FormID + " form")

type Snippet struct {
	Raw   string
	Title string

	// Action is the form's action attribute, if any. Submissions always go
	// to the tweet endpoint regardless.
	Action string

	HasSuppress   bool
	SuppressLabel string

	fields   url.Values
	order    []string
	controls map[string]bool
	readonly map[string]bool
	maxlen   map[string]int
}

func Parse(html string) (*Snippet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snippet: %w", err)
	}
	form := doc.Find("#" + FormID).First()
	if form.Length() == 0 {
		return nil, ErrFormNotFound
	}

	s := &Snippet{
		Raw:      html,
		Action:   getAttr(form, "action"),
		fields:   url.Values{},
		controls: map[string]bool{},
		readonly: map[string]bool{},
		maxlen:   map[string]int{},
	}
	s.Title = strings.TrimSpace(doc.Find(".modal-title").First().Text())
	if s.Title == "" {
		s.Title = strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
	}

	if btn := doc.Find("." + SuppressClass).First(); btn.Length() > 0 {
		s.HasSuppress = true
		s.SuppressLabel = strings.TrimSpace(btn.Text())
		if s.SuppressLabel == "" {
			s.SuppressLabel = getAttr(btn, "value")
		}
	}

	serialize(form, s)
	return s, nil
}

func ParseFile(path string) (*Snippet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(b))
}

// serialize collects the successful controls of the form in document order,
// the same set jQuery's .serialize() would send. :disabled also covers
// controls inside a disabled fieldset.
func serialize(form *goquery.Selection, s *Snippet) {
	form.Find("input, textarea, select").Not(":disabled").Each(func(_ int, el *goquery.Selection) {
		name := getAttr(el, "name")
		if name == "" {
			return
		}
		if _, ro := el.Attr("readonly"); ro {
			s.readonly[name] = true
		}
		if n, err := strconv.Atoi(getAttr(el, "maxlength")); err == nil && n > 0 {
			s.maxlen[name] = n
		}

		switch goquery.NodeName(el) {
		case "textarea":
			s.controls[name] = true
			s.add(name, el.Text())
		case "select":
			s.controls[name] = true
			opts := el.Find("option[selected]")
			if opts.Length() == 0 {
				if _, multiple := el.Attr("multiple"); multiple {
					return
				}
				opts = el.Find("option").First()
			}
			opts.Each(func(_ int, o *goquery.Selection) {
				v, ok := o.Attr("value")
				if !ok {
					v = strings.TrimSpace(o.Text())
				}
				s.add(name, v)
			})
		default:
			typ := strings.ToLower(getAttr(el, "type"))
			switch typ {
			case "submit", "button", "reset", "image", "file":
				return
			}
			s.controls[name] = true
			switch typ {
			case "checkbox", "radio":
				if _, checked := el.Attr("checked"); !checked {
					return
				}
				v, ok := el.Attr("value")
				if !ok {
					v = "on"
				}
				s.add(name, v)
			default:
				s.add(name, getAttr(el, "value"))
			}
		}
	})
}

func (s *Snippet) add(name, value string) {
	if _, seen := s.fields[name]; !seen {
		s.order = append(s.order, name)
	}
	s.fields.Add(name, normalizeNewlines(value))
}

// Fields returns a copy of the serialized form, with LF line breaks.
func (s *Snippet) Fields() url.Values {
	out := make(url.Values, len(s.fields))
	for k, v := range s.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Names returns field names in document order.
func (s *Snippet) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Snippet) ReadOnly(name string) bool {
	return s.readonly[name]
}

// MaxLength returns the field's maxlength, or 0 when it has none.
func (s *Snippet) MaxLength(name string) int {
	return s.maxlen[name]
}

func (s *Snippet) TweetText() string {
	return s.fields.Get(TweetField)
}

// Merge overlays edits on the serialized form and returns it ready to send.
// Edits to readonly fields or to names that are not controls of the form are
// dropped, and all edits are dropped when allowEdit is false. Line breaks
// go out as CRLF, as a browser submits them.
func (s *Snippet) Merge(edits url.Values, allowEdit bool) url.Values {
	out := s.Fields()
	if allowEdit {
		for k, v := range edits {
			if !s.controls[k] || s.readonly[k] {
				continue
			}
			out[k] = append([]string(nil), v...)
		}
	}
	for _, vs := range out {
		for i, v := range vs {
			vs[i] = wireNewlines(v)
		}
	}
	return out
}

func getAttr(s *goquery.Selection, key string) string {
	if v, ok := s.Attr(key); ok {
		return v
	}
	return ""
}

// keep LF internally
func normalizeNewlines(v string) string {
	return strings.ReplaceAll(v, "\r\n", "\n")
}

func wireNewlines(v string) string {
	return strings.ReplaceAll(normalizeNewlines(v), "\n", "\r\n")
}
