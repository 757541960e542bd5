// Package formatter renders links through {{variable}} templates, e.g.
// "{{index}}. {{host}} {{url}}". Named presets cover the usual shapes.
package formatter

import (
	"fmt"
	"regexp"
	"strings"
)

// TemplateEngine parses and fills templates.
type TemplateEngine interface {
	// Parse returns the variables of template in first-use order.
	Parse(template string) ([]string, error)

	// Substitute replaces every variable with its value for ctx.
	Substitute(template string, ctx VariableContext) (string, error)

	// ValidateTemplate checks the delimiters and that every variable is known.
	ValidateTemplate(template string) error
}

type templateEngine struct {
	variablePattern *regexp.Regexp
	resolver        VariableResolver
}

// NewTemplateEngine returns the default engine.
func NewTemplateEngine() TemplateEngine {
	return &templateEngine{
		variablePattern: regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`),
		resolver:        NewVariableResolver(),
	}
}

func (te *templateEngine) Parse(template string) ([]string, error) {
	seen := make(map[string]bool)
	vars := []string{}
	for _, m := range te.variablePattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars, nil
}

func (te *templateEngine) Substitute(template string, ctx VariableContext) (string, error) {
	var firstErr error
	out := te.variablePattern.ReplaceAllStringFunc(template, func(m string) string {
		value, err := te.resolver.Resolve(m[2:len(m)-2], ctx)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (te *templateEngine) ValidateTemplate(template string) error {
	opens, closes := strings.Count(template, "{{"), strings.Count(template, "}}")
	if opens != closes {
		return fmt.Errorf("mismatched variable delimiters: %d opens, %d closes", opens, closes)
	}
	vars, _ := te.Parse(template)
	for _, v := range vars {
		if _, err := te.resolver.Resolve(v, VariableContext{}); err != nil {
			return err
		}
	}
	return nil
}
