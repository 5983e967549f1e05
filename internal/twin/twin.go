// Package twin is a local stand-in for the CKAN routes the tweet dialog
// talks to. It renders the edit_tweet snippet and answers the tweet and
// disable-popup POSTs with the same JSON shapes as ckanext-twitter, but
// never contacts Twitter.
package twin

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mikequentel/confirmtweet/internal/model"
)

// Mode decides how the tweet endpoint answers a non-empty tweet.
type Mode string

const (
	ModeDebug  Mode = "debug"  // success=false, reason "debug" (CKAN debug flag)
	ModeAccept Mode = "accept" // success=true
	ModeEmpty  Mode = "empty"  // 200 with no body
	ModeNull   Mode = "null"   // 200 with a JSON null
	modeReject      = "reject:"
)

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.TrimSpace(s))
	switch {
	case m == "":
		return ModeDebug, nil
	case m == ModeDebug, m == ModeAccept, m == ModeEmpty, m == ModeNull:
		return m, nil
	case strings.HasPrefix(string(m), modeReject) && len(m) > len(modeReject):
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want debug, accept, empty, null or reject:<reason>)", s)
}

// Reject returns a mode that refuses every tweet with the given reason.
func Reject(reason string) Mode { return Mode(modeReject + reason) }

type Dataset struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Resources int    `json:"resources"`
}

// DraftTweet is the text pre-filled into the edit form.
func (d Dataset) DraftTweet() string {
	unit := "resources"
	if d.Resources == 1 {
		unit = "resource"
	}
	return fmt.Sprintf(`New dataset: "%s" by %s (%d %s).`, d.Title, d.Author, d.Resources, unit)
}

type Post struct {
	PackageID string    `json:"pkgid"`
	Form      string    `json:"form"`
	Tweet     string    `json:"tweet"`
	At        time.Time `json:"at"`
}

type State struct {
	Datasets      []Dataset `json:"datasets"`
	Posts         []Post    `json:"posts"`
	PopupDisabled bool      `json:"popup_disabled"`
}

type Server struct {
	mu       sync.Mutex
	mode     Mode
	datasets map[string]Dataset
	order    []string
	posts    []Post
	disabled bool

	log *slog.Logger
}

func New(mode Mode, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if mode == "" {
		mode = ModeDebug
	}
	return &Server{mode: mode, datasets: map[string]Dataset{}, log: log}
}

func (s *Server) AddDataset(d Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[d.ID]; !ok {
		s.order = append(s.order, d.ID)
	}
	s.datasets[d.ID] = d
}

func (s *Server) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Posts:         append([]Post(nil), s.posts...),
		PopupDisabled: s.disabled,
	}
	for _, id := range s.order {
		st.Datasets = append(st.Datasets, s.datasets[id])
	}
	return st
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	s.Routes(r)
	return r
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/api/1/util/snippet/{name}", s.Snippet)
	r.Post("/dataset/disable-tweet-popup", s.DisablePopup)
	r.Post("/dataset/{pkgid}/tweet", s.Tweet)
	r.Get("/admin/state", s.AdminState)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start))
	})
}

var editTweet = template.Must(template.New("edit_tweet.html").Parse(`<div class="modal fade" id="tweet-modal">
  <div class="modal-header">
    <h3 class="modal-title">Tweet about "{{.Dataset.Title}}"?</h3>
  </div>
  <div class="modal-body">
    <form id="edit-tweet-form" action="/dataset/{{.Dataset.ID}}/tweet" method="post">
      <textarea name="tweet_text" maxlength="280"{{if .DisableEdit}} readonly{{end}}>{{.Tweet}}</textarea>
      <button type="submit" class="btn btn-primary">Tweet</button>
    </form>
  </div>
  <div class="modal-footer">
    <button type="button" class="btn no-tweet">Don't ask me again</button>
  </div>
</div>
`))

func (s *Server) Snippet(w http.ResponseWriter, r *http.Request) {
	if name := chi.URLParam(r, "name"); name != "edit_tweet.html" {
		http.Error(w, "Snippet not found", http.StatusNotFound)
		return
	}
	q := r.URL.Query()
	cfg, err := model.NewWidgetConfig(q.Get("pkgid"), q.Get("disable_edit"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	ds, ok := s.datasets[cfg.PackageID]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "Dataset not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = editTweet.Execute(w, struct {
		Dataset     Dataset
		Tweet       string
		DisableEdit bool
	}{ds, ds.DraftTweet(), cfg.DisableEdit})
	if err != nil {
		s.log.Error("render snippet", "err", err)
	}
}

func (s *Server) Tweet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pkgID := chi.URLParam(r, "pkgid")
	text := r.PostForm.Get("tweet_text")

	s.mu.Lock()
	mode := s.mode
	s.posts = append(s.posts, Post{PackageID: pkgID, Form: r.PostForm.Encode(), Tweet: text, At: time.Now().UTC()})
	s.mu.Unlock()

	if text == "" {
		JSON(w, http.StatusOK, model.SubmissionResult{Success: false, Reason: "no tweet defined", Tweet: "tweet not defined"})
		return
	}
	switch {
	case mode == ModeAccept:
		JSON(w, http.StatusOK, model.SubmissionResult{Success: true, Reason: "200 OK", Tweet: text})
	case mode == ModeEmpty:
		w.WriteHeader(http.StatusOK)
	case mode == ModeNull:
		JSON(w, http.StatusOK, nil)
	case strings.HasPrefix(string(mode), modeReject):
		JSON(w, http.StatusOK, model.SubmissionResult{Success: false, Reason: strings.TrimPrefix(string(mode), modeReject), Tweet: text})
	default:
		JSON(w, http.StatusOK, model.SubmissionResult{Success: false, Reason: "debug", Tweet: text})
	}
}

func (s *Server) DisablePopup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) AdminState(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.State())
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ParseDataset reads "id=title|author|resources" as used by the twin's
// -dataset flag.
func ParseDataset(s string) (Dataset, error) {
	id, rest, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return Dataset{}, fmt.Errorf("bad dataset %q (want id=title|author|resources)", s)
	}
	parts := strings.Split(rest, "|")
	if len(parts) != 3 {
		return Dataset{}, fmt.Errorf("bad dataset %q (want id=title|author|resources)", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || n < 0 {
		return Dataset{}, fmt.Errorf("bad resource count in %q", s)
	}
	return Dataset{
		ID:        strings.TrimSpace(id),
		Title:     strings.TrimSpace(parts[0]),
		Author:    strings.TrimSpace(parts[1]),
		Resources: n,
	}, nil
}
