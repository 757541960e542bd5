package search

import "strings"

// TokenProvider splits the query on whitespace. Every token must be
// contained in some field. A token starting with '-' must not be.
type TokenProvider struct {
	opts Options
}

// NewTokenProvider creates a token provider.
func NewTokenProvider(opts ...Option) Provider {
	return &TokenProvider{opts: applyOptions(opts)}
}

// Match reports whether link satisfies every token of query.
func (p *TokenProvider) Match(link, query string) bool {
	values := fieldValues(link, p.opts.Fields)
	if p.opts.CaseInsensitive {
		for i, v := range values {
			values[i] = strings.ToLower(v)
		}
		query = strings.ToLower(query)
	}
	for _, tok := range strings.Fields(query) {
		negate := strings.HasPrefix(tok, "-") && len(tok) > 1
		if negate {
			tok = tok[1:]
		}
		if containsAny(values, tok) == negate {
			return false
		}
	}
	return true
}

func containsAny(values []string, tok string) bool {
	for _, v := range values {
		if strings.Contains(v, tok) {
			return true
		}
	}
	return false
}

// Name returns "token".
func (p *TokenProvider) Name() string {
	return "token"
}
