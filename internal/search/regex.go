package search

import (
	"regexp"
	"sync"
)

// RegexProvider matches when a field matches the query pattern. Compiled
// patterns are cached.
type RegexProvider struct {
	opts    Options
	cache   map[string]*regexp.Regexp
	cacheMu sync.RWMutex
}

// NewRegexProvider creates a regex provider.
func NewRegexProvider(opts ...Option) Provider {
	return &RegexProvider{
		opts:  applyOptions(opts),
		cache: make(map[string]*regexp.Regexp),
	}
}

// Match reports whether any configured field matches query. An invalid
// pattern matches nothing.
func (p *RegexProvider) Match(link, query string) bool {
	if query == "" {
		return true
	}
	re, err := p.compile(query)
	if err != nil {
		return false
	}
	for _, v := range fieldValues(link, p.opts.Fields) {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// Validate reports whether query compiles.
func (p *RegexProvider) Validate(query string) error {
	_, err := p.compile(query)
	return err
}

func (p *RegexProvider) compile(pattern string) (*regexp.Regexp, error) {
	p.cacheMu.RLock()
	re, ok := p.cache[pattern]
	p.cacheMu.RUnlock()
	if ok {
		return re, nil
	}

	expr := pattern
	if p.opts.CaseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	p.cacheMu.Lock()
	p.cache[pattern] = re
	p.cacheMu.Unlock()
	return re, nil
}

// Name returns "regex".
func (p *RegexProvider) Name() string {
	return "regex"
}
