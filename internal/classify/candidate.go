// Package classify partitions the links under a selection rectangle into
// highlighted, duplicate, excluded and over-limit sets.
package classify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cristianoliveira/area-links/internal/geometry"
	"golang.org/x/net/idna"
)

// ErrMalformedURL is returned when a candidate URL cannot be resolved into the
// forms used for exclusion matching.
var ErrMalformedURL = errors.New("malformed link URL")

// hostProfile converts hostnames the way a browser resolves them: lower-cased,
// nontransitional IDNA, punycode for non-ASCII labels. Underscores and other
// non-STD3 characters that browsers tolerate are accepted.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// Candidate is one on-page link eligible for selection. Rect is in document
// space and is captured once per gesture.
type Candidate struct {
	URL  string
	Rect geometry.Rect

	forms *urlForms
}

type urlForms struct {
	host    string
	href    string
	decoded string
	err     error
}

// NewCandidate returns a candidate for the resolved URL and document rectangle.
func NewCandidate(rawURL string, rect geometry.Rect) Candidate {
	return Candidate{URL: rawURL, Rect: rect}
}

// Hostname returns the lower-cased ASCII hostname of the candidate URL.
func (c *Candidate) Hostname() (string, error) {
	f := c.resolve()
	return f.host, f.err
}

// resolve computes the lower-case hostname, href and decoded href on first use.
func (c *Candidate) resolve() *urlForms {
	if c.forms != nil {
		return c.forms
	}
	c.forms = parseForms(c.URL)
	return c.forms
}

func parseForms(raw string) *urlForms {
	u, err := url.Parse(raw)
	if err != nil {
		return &urlForms{err: fmt.Errorf("%w: %v", ErrMalformedURL, err)}
	}
	if !u.IsAbs() {
		return &urlForms{err: fmt.Errorf("%w: %q is not absolute", ErrMalformedURL, raw)}
	}

	host := u.Hostname()
	if host != "" {
		ascii, err := hostProfile.ToASCII(host)
		if err != nil {
			return &urlForms{err: fmt.Errorf("%w: hostname %q: %v", ErrMalformedURL, host, err)}
		}
		host = ascii
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return &urlForms{err: fmt.Errorf("%w: %v", ErrMalformedURL, err)}
	}

	return &urlForms{
		host:    strings.ToLower(host),
		href:    strings.ToLower(raw),
		decoded: strings.ToLower(decoded),
	}
}
