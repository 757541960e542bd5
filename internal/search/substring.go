package search

import "strings"

// SubstringProvider matches when a field contains the query.
type SubstringProvider struct {
	opts Options
}

// NewSubstringProvider creates a substring provider.
func NewSubstringProvider(opts ...Option) Provider {
	return &SubstringProvider{opts: applyOptions(opts)}
}

// Match reports whether any configured field contains query.
func (p *SubstringProvider) Match(link, query string) bool {
	if query == "" {
		return true
	}
	if p.opts.CaseInsensitive {
		query = strings.ToLower(query)
	}
	for _, v := range fieldValues(link, p.opts.Fields) {
		if p.opts.CaseInsensitive {
			v = strings.ToLower(v)
		}
		if strings.Contains(v, query) {
			return true
		}
	}
	return false
}

// Name returns "substring".
func (p *SubstringProvider) Name() string {
	return "substring"
}
