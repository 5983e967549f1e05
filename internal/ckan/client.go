// Package ckan talks to the CKAN endpoints behind the tweet confirmation
// dialog: the snippet renderer and the two AJAX POST routes.
package ckan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikequentel/confirmtweet/internal/model"
)

const DisablePopupPath = "/dataset/disable-tweet-popup"

var DefaultTimeout = 20 * time.Second

// TweetPath is the submission endpoint for a dataset.
func TweetPath(pkgID string) string {
	return "/dataset/" + url.PathEscape(pkgID) + "/tweet"
}

type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:    u,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// GetTemplate renders a named snippet with the widget config as template
// parameters, the way the CKAN JS client's getTemplate does.
func (c *Client) GetTemplate(ctx context.Context, name string, cfg model.WidgetConfig) (string, error) {
	q := url.Values{}
	for k, v := range cfg.Params() {
		q.Set(k, v)
	}
	target := c.endpoint("/api/1/util/snippet/"+url.PathEscape(name)) + "?" + q.Encode()

	body, err := c.do(ctx, http.MethodGet, target, nil, "text/html")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PostForm posts a url-encoded form and returns the raw response body.
// An empty form is sent as an empty body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	var r io.Reader
	if len(form) > 0 {
		r = strings.NewReader(form.Encode())
	}
	return c.do(ctx, http.MethodPost, c.endpoint(path), r, "application/json")
}

// endpoint joins an already escaped path onto the base URL.
func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.base.String(), "/") + path
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, accept string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("ckan request failed", "method", method, "url", target, "err", err)
		return nil, err
	}
	defer resp.Body.Close()
	c.log.Debug("ckan request", "method", method, "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s %s: %s (%d)", method, target, strings.TrimSpace(string(b)), resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
