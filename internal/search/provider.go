// Package search filters links by a query. Substring, regex and token
// strategies share the Provider interface so that the CLI and the TUI match
// links the same way.
package search

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider matches a link against a query.
type Provider interface {
	// Match reports whether link matches query. An empty query matches
	// every link.
	Match(link, query string) bool

	// Name identifies the strategy.
	Name() string
}

// Fields a query can be matched against.
const (
	FieldURL  = "url"
	FieldHost = "host"
	FieldPath = "path"
)

// Options configures a provider.
type Options struct {
	CaseInsensitive bool
	Fields          []string
}

// DefaultOptions matches the whole URL, case sensitive.
func DefaultOptions() Options {
	return Options{Fields: []string{FieldURL}}
}

// Option modifies Options.
type Option func(*Options)

// WithCaseInsensitive ignores case when matching.
func WithCaseInsensitive(enabled bool) Option {
	return func(o *Options) { o.CaseInsensitive = enabled }
}

// WithFields sets the parts of the link to match: url, host or path.
func WithFields(fields []string) Option {
	return func(o *Options) { o.Fields = fields }
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// fieldValues returns the parts of link named by fields. Links that do not
// parse only have a url field.
func fieldValues(link string, fields []string) []string {
	u, err := url.Parse(link)
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case FieldURL:
			values = append(values, link)
		case FieldHost:
			if err == nil && u.Host != "" {
				values = append(values, u.Hostname())
			}
		case FieldPath:
			if err == nil && u.Path != "" {
				values = append(values, u.Path)
			}
		}
	}
	return values
}

// New returns the provider registered under name.
func New(name string, opts ...Option) (Provider, error) {
	switch strings.ToLower(name) {
	case "", "substring":
		return NewSubstringProvider(opts...), nil
	case "regex":
		return NewRegexProvider(opts...), nil
	case "token":
		return NewTokenProvider(opts...), nil
	default:
		return nil, fmt.Errorf("unknown search mode %q (want substring, regex or token)", name)
	}
}

// Filter returns the links that match query, keeping their order.
func Filter(p Provider, links []string, query string) []string {
	if query == "" {
		return links
	}
	var out []string
	for _, l := range links {
		if p.Match(l, query) {
			out = append(out, l)
		}
	}
	return out
}
