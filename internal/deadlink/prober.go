// Package deadlink finds bookmarks whose URLs no longer resolve to a page.
//
// Classification leans towards keeping bookmarks: only a 404, a server error
// status, a timeout or a network-level failure marks a link dead. Anything
// ambiguous (auth walls, rate limits, unknown failures) counts as alive.
package deadlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nikbrunner/bmtidy/internal/model"
)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 10 * time.Second

// Classification says why a link was judged dead.
type Classification int

const (
	NotFound Classification = iota + 1
	HTTPError
	Timeout
	NetworkError
)

func (c Classification) String() string {
	switch c {
	case NotFound:
		return "not found"
	case HTTPError:
		return "http error"
	case Timeout:
		return "timeout"
	case NetworkError:
		return "network error"
	}
	return "unknown"
}

// Result is a dead link.
type Result struct {
	Bookmark       model.Node
	Classification Classification
	StatusCode     int // 0 if the request never got a response
	Reason         string
}

// Checker probes a single bookmark. A nil result means alive.
type Checker interface {
	Check(ctx context.Context, bookmark model.Node) *Result
}

// Prober checks one bookmark with one GET request.
type Prober struct {
	Fetcher Fetcher
	Timeout time.Duration
	Logger  *slog.Logger
}

var _ Checker = (*Prober)(nil)

// NewProber creates a Prober over an HTTPFetcher.
func NewProber(timeout time.Duration, logger *slog.Logger) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Fetcher: NewHTTPFetcher(timeout),
		Timeout: timeout,
		Logger:  logger,
	}
}

func (p *Prober) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// Check probes bookmark and returns a Result if the link is dead.
func (p *Prober) Check(ctx context.Context, bookmark model.Node) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger().Warn("probe panicked", "url", bookmark.URL, "panic", r)
			res = nil
		}
	}()

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	status, err := p.Fetcher.Fetch(reqCtx, bookmark.URL)
	if err != nil {
		// The scan itself was stopped; the outcome says nothing about the link.
		if ctx.Err() != nil {
			return nil
		}
		return p.classifyFailure(bookmark, err)
	}
	return classifyStatus(bookmark, status)
}

func classifyStatus(bookmark model.Node, status int) *Result {
	switch {
	case status == http.StatusNotFound:
		return &Result{
			Bookmark:       bookmark,
			Classification: NotFound,
			StatusCode:     status,
			Reason:         "HTTP 404: Not Found",
		}
	case isAmbiguousStatus(status), status < 400:
		return nil
	default:
		return &Result{
			Bookmark:       bookmark,
			Classification: HTTPError,
			StatusCode:     status,
			Reason:         fmt.Sprintf("HTTP Status %d", status),
		}
	}
}

// isAmbiguousStatus reports statuses that usually mean "not for you, not
// now" rather than "gone".
func isAmbiguousStatus(status int) bool {
	switch status {
	case http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusMethodNotAllowed,
		http.StatusTooManyRequests,
		http.StatusServiceUnavailable:
		return true
	}
	return false
}

func (p *Prober) classifyFailure(bookmark model.Node, err error) *Result {
	var fe *FetchError
	if !errors.As(err, &fe) {
		p.logger().Debug("untyped fetch error, assuming alive", "url", bookmark.URL, "error", err)
		return nil
	}

	switch fe.Kind {
	case KindTimeout:
		return &Result{
			Bookmark:       bookmark,
			Classification: Timeout,
			Reason:         fmt.Sprintf("Slow response (%ss+ timeout) - might be temporarily unavailable", formatSeconds(p.timeout())),
		}
	case KindNetwork:
		label := fe.Label
		if label == "" {
			label = "Unreachable"
		}
		return &Result{
			Bookmark:       bookmark,
			Classification: NetworkError,
			Reason:         "Network Error: " + label,
		}
	default:
		p.logger().Debug("unclassified fetch error, assuming alive", "url", bookmark.URL, "error", fe.Err)
		return nil
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
