// Package lookup maps a visited page URL back to the bookmark it most likely
// came from.
package lookup

import (
	"context"
	"log/slog"

	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/store"
	"github.com/nikbrunner/bmtidy/internal/urlnorm"
)

// MaxRedirectDepth bounds how many redirect parameters are unwrapped.
const MaxRedirectDepth = 5

// Finder resolves URLs to bookmarks through the store's exact-URL search.
type Finder struct {
	Bookmarks store.Bookmarks
	Logger    *slog.Logger
}

// New creates a Finder.
func New(bookmarks store.Bookmarks, logger *slog.Logger) *Finder {
	return &Finder{Bookmarks: bookmarks, Logger: logger}
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// Find returns the first bookmark matching rawURL or one of its variants:
// exact, normalized, without www, with www, http, https, and finally the
// destination carried by a login redirect parameter. It returns nil when
// nothing matches.
func (f *Finder) Find(ctx context.Context, rawURL string) *model.Node {
	return f.find(ctx, rawURL, 0)
}

func (f *Finder) find(ctx context.Context, rawURL string, depth int) *model.Node {
	if rawURL == "" {
		return nil
	}
	if n := f.search(ctx, rawURL); n != nil {
		return n
	}

	var candidates []string
	if normalized := urlnorm.Normalize(rawURL); normalized != rawURL {
		candidates = append(candidates, normalized)
	}
	if v, ok := urlnorm.WithoutWWW(rawURL); ok {
		candidates = append(candidates, v)
	}
	if v, ok := urlnorm.WithWWW(rawURL); ok {
		candidates = append(candidates, v)
	}
	if v, ok := urlnorm.HTTPVariant(rawURL); ok {
		candidates = append(candidates, v)
	}
	if v, ok := urlnorm.HTTPSVariant(rawURL); ok {
		candidates = append(candidates, v)
	}

	for _, c := range candidates {
		if n := f.search(ctx, c); n != nil {
			f.logger().Debug("matched bookmark by variant", "url", rawURL, "variant", c)
			return n
		}
	}

	if depth >= MaxRedirectDepth {
		return nil
	}
	if target, ok := urlnorm.RedirectTarget(rawURL); ok && target != rawURL {
		f.logger().Debug("following redirect parameter", "url", rawURL, "target", target)
		return f.find(ctx, target, depth+1)
	}
	return nil
}

func (f *Finder) search(ctx context.Context, u string) *model.Node {
	found, err := f.Bookmarks.Search(ctx, store.Query{URL: u})
	if err != nil {
		f.logger().Warn("bookmark search failed", "url", u, "error", err)
		return nil
	}
	if len(found) == 0 {
		return nil
	}
	return &found[0]
}
