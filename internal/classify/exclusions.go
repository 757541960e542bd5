package classify

import (
	"net/url"
	"strings"
)

// Exclusions holds normalized excluded domains and words.
// Build it with NewExclusions; the zero value excludes nothing but malformed URLs.
type Exclusions struct {
	domains []string
	words   []string
}

// NewExclusions normalizes domains to their resolved hostname form and words to
// lower case. Blank and repeated entries are dropped.
func NewExclusions(domains, words []string) Exclusions {
	var e Exclusions
	seen := make(map[string]bool)
	for _, d := range domains {
		n := NormalizeDomain(d)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		e.domains = append(e.domains, n)
	}
	seen = make(map[string]bool)
	for _, w := range words {
		n := strings.ToLower(strings.TrimSpace(w))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		e.words = append(e.words, n)
	}
	return e
}

// Domains returns the normalized domain list.
func (e Exclusions) Domains() []string { return append([]string(nil), e.domains...) }

// Words returns the normalized word list.
func (e Exclusions) Words() []string { return append([]string(nil), e.words...) }

// NormalizeDomain resolves a user-typed domain to the hostname a browser would
// produce for it, so "пример.рф" matches links to "xn--e1afmkfd.xn--p1ai".
// Input that cannot be parsed is returned lower-cased.
func NormalizeDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	raw := domain
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(domain)
	}
	ascii, err := hostProfile.ToASCII(u.Hostname())
	if err != nil {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(ascii)
}

// IsExcluded reports whether the candidate matches an excluded domain or word.
// A candidate whose URL cannot be resolved is always excluded.
//
// Words are matched against the hostname, the raw href and the decoded href so
// a word typed in readable form also matches encoded and punycode URLs.
func (e Exclusions) IsExcluded(c *Candidate) bool {
	f := c.resolve()
	if f.err != nil {
		return true
	}
	for _, d := range e.domains {
		if strings.Contains(f.host, d) {
			return true
		}
	}
	for _, w := range e.words {
		if strings.Contains(f.host, w) || strings.Contains(f.href, w) || strings.Contains(f.decoded, w) {
			return true
		}
	}
	return false
}
