package formatter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// VariableContext is one link and its place in the printed list.
type VariableContext struct {
	URL   string
	Index int
	Total int
	List  string
}

// Variables lists every variable a template can use.
var Variables = []string{"url", "scheme", "host", "path", "query", "index", "total", "list"}

// VariableResolver resolves template variables to their values.
type VariableResolver interface {
	Resolve(varName string, ctx VariableContext) (string, error)
}

type variableResolver struct{}

// NewVariableResolver returns the link variable resolver.
func NewVariableResolver() VariableResolver {
	return variableResolver{}
}

// Resolve returns the value of varName. URL parts of a link that does not
// parse are empty.
func (variableResolver) Resolve(varName string, ctx VariableContext) (string, error) {
	u, err := url.Parse(ctx.URL)
	if err != nil {
		u = &url.URL{}
	}
	switch varName {
	case "url":
		return ctx.URL, nil
	case "scheme":
		return u.Scheme, nil
	case "host":
		return u.Hostname(), nil
	case "path":
		return u.Path, nil
	case "query":
		return u.RawQuery, nil
	case "index":
		return strconv.Itoa(ctx.Index), nil
	case "total":
		return strconv.Itoa(ctx.Total), nil
	case "list":
		return ctx.List, nil
	default:
		return "", fmt.Errorf("unknown variable: %s (available: %s)", varName, strings.Join(Variables, ", "))
	}
}
