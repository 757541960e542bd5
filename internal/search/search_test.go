package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLink = "https://Docs.Example.org/guide/intro?lang=go"

// TestDefaultOptions verifies default option values.
func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.False(t, opts.CaseInsensitive, "default should be case-sensitive")
	assert.Equal(t, []string{FieldURL}, opts.Fields)
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions()
	WithCaseInsensitive(true)(&opts)
	WithFields([]string{FieldHost, FieldPath})(&opts)

	assert.True(t, opts.CaseInsensitive)
	assert.Equal(t, []string{FieldHost, FieldPath}, opts.Fields)
}

func TestSubstringProvider(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		query string
		want  bool
	}{
		{"empty query", nil, "", true},
		{"url contains", nil, "guide/intro", true},
		{"case sensitive miss", nil, "docs.example", false},
		{"case insensitive hit", []Option{WithCaseInsensitive(true)}, "docs.example", true},
		{"host only skips query", []Option{WithFields([]string{FieldHost})}, "lang=go", false},
		{"host only hit", []Option{WithFields([]string{FieldHost})}, "Example.org", true},
		{"path field", []Option{WithFields([]string{FieldPath})}, "/guide", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSubstringProvider(tt.opts...)
			assert.Equal(t, tt.want, p.Match(testLink, tt.query))
		})
	}
}

func TestRegexProvider(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		query string
		want  bool
	}{
		{"empty query", nil, "", true},
		{"anchored scheme", nil, "^https://", true},
		{"no match", nil, `\.com/`, false},
		{"invalid pattern", nil, "[", false},
		{"case insensitive", []Option{WithCaseInsensitive(true)}, "^docs\\.", false},
		{"case insensitive host", []Option{WithCaseInsensitive(true), WithFields([]string{FieldHost})}, "^docs\\.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRegexProvider(tt.opts...)
			assert.Equal(t, tt.want, p.Match(testLink, tt.query))
		})
	}
}

func TestRegexProviderCachesPatterns(t *testing.T) {
	p := NewRegexProvider().(*RegexProvider)
	assert.True(t, p.Match(testLink, "intro"))
	assert.True(t, p.Match(testLink, "intro"))
	assert.Len(t, p.cache, 1)

	require.NoError(t, p.Validate("a+"))
	assert.Error(t, p.Validate("("))
}

func TestTokenProvider(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"all tokens", "guide lang", true},
		{"one missing", "guide python", false},
		{"negated absent", "guide -python", true},
		{"negated present", "guide -intro", false},
		{"lone dash is literal", "-", false},
		{"blank", "   ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewTokenProvider()
			assert.Equal(t, tt.want, p.Match(testLink, tt.query))
		})
	}
}

func TestUnparsableLinkOnlyHasURLField(t *testing.T) {
	p := NewSubstringProvider(WithFields([]string{FieldURL, FieldHost}))
	assert.True(t, p.Match("%zz-not-a-url", "zz"))

	hostOnly := NewSubstringProvider(WithFields([]string{FieldHost}))
	assert.False(t, hostOnly.Match("%zz-not-a-url", "zz"))
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "substring", "regex", "TOKEN"} {
		p, err := New(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Name())
	}
	_, err := New("fuzzy")
	assert.Error(t, err)
}

func TestFilterKeepsOrder(t *testing.T) {
	links := []string{"https://a.test/x", "https://b.test/", "https://c.test/x"}
	assert.Equal(t, []string{"https://a.test/x", "https://c.test/x"}, Filter(NewSubstringProvider(), links, "/x"))
	assert.Equal(t, links, Filter(NewSubstringProvider(), links, ""))
	assert.Empty(t, Filter(NewSubstringProvider(), links, "nothing"))
}
