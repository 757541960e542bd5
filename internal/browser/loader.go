package browser

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/cristianoliveira/area-links/internal/page"
)

// DefaultFetchTimeout bounds a page load.
const DefaultFetchTimeout = 15 * time.Second

const userAgent = "area-links/1.0 (+https://github.com/cristianoliveira/area-links)"

// maxBodySize caps how much of a response is laid out.
const maxBodySize = 8 << 20

// Loader fetches and lays out a document.
type Loader interface {
	Load(ctx context.Context, rawURL string, width int) (*page.Document, error)
}

// HTTPLoader loads http(s) pages. Other schemes, such as about:blank, load
// as empty documents.
type HTTPLoader struct {
	client *http.Client
}

// NewHTTPLoader returns a loader whose requests time out after timeout.
func NewHTTPLoader(timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPLoader{client: &http.Client{Timeout: timeout}}
}

// Load fetches rawURL and lays it out width cells wide. The document URL is
// the final URL after redirects.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string, width int) (*page.Document, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return &page.Document{URL: rawURL, Width: width}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: %s", rawURL, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && !strings.Contains(mt, "html") && !strings.HasPrefix(mt, "text/") {
			return nil, fmt.Errorf("fetching %s: unsupported content type %s", rawURL, mt)
		}
	}

	doc, err := page.Parse(io.LimitReader(resp.Body, maxBodySize), resp.Request.URL.String(), width)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}
