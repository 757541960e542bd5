package formatter

import (
	"fmt"
	"strings"
)

// Preset is a named template.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// PresetRegistry manages template presets.
type PresetRegistry interface {
	Get(name string) (*Preset, error)
	List() []Preset
	Register(preset Preset) error
}

type presetRegistry struct {
	presets map[string]Preset
	order   []string
}

// NewPresetRegistry returns a registry holding the default presets.
func NewPresetRegistry() PresetRegistry {
	r := &presetRegistry{presets: make(map[string]Preset)}
	for _, p := range []Preset{
		{Name: "plain", Template: "{{url}}", Description: "One URL per line"},
		{Name: "numbered", Template: "{{index}}. {{url}}", Description: "URLs numbered from 1"},
		{Name: "markdown", Template: "- [{{host}}{{path}}]({{url}})", Description: "Markdown list of links"},
		{Name: "hosts", Template: "{{host}}", Description: "Host of each link"},
	} {
		_ = r.Register(p)
	}
	return r
}

func (r *presetRegistry) Get(name string) (*Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset not found: %s", name)
	}
	return &p, nil
}

// List returns the presets in registration order.
func (r *presetRegistry) List() []Preset {
	out := make([]Preset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.presets[name])
	}
	return out
}

// Register adds a preset or replaces the one with the same name.
func (r *presetRegistry) Register(p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if p.Template == "" {
		return fmt.Errorf("preset template cannot be empty")
	}
	if _, exists := r.presets[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.presets[p.Name] = p
	return nil
}

// Links renders every link through format, which is a preset name or a
// template. Each rendered link is one element of the result.
func Links(format string, links []string) ([]string, error) {
	tmpl := format
	if p, err := NewPresetRegistry().Get(format); err == nil {
		tmpl = p.Template
	}
	engine := NewTemplateEngine()
	if err := engine.ValidateTemplate(tmpl); err != nil {
		return nil, err
	}
	list := strings.Join(links, " ")
	out := make([]string, 0, len(links))
	for i, l := range links {
		s, err := engine.Substitute(tmpl, VariableContext{URL: l, Index: i + 1, Total: len(links), List: list})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
