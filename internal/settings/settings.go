package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cristianoliveira/area-links/internal/classify"
	"github.com/cristianoliveira/area-links/internal/config"
)

// Settings is the read-only snapshot a selection session is started with.
type Settings struct {
	// TabLimit caps how many links open mode highlights.
	TabLimit int

	// SelectionStyle is the legacy combined style name. It only matters when
	// SelectionBoxStyle was never set.
	SelectionStyle    string
	SelectionBoxStyle string
	SelectionBoxColor string
	HighlightStyle    string

	OpenInNewWindow  bool
	ReverseOrder     bool
	OpenNextToParent bool
	ShowContextMenu  bool

	ApplyExclusionsOnCopy       bool
	RemoveDuplicatesInSelection bool
	CheckDuplicatesOnCopy       bool
	UseHistory                  bool
	UseCopyHistory              bool

	// ExcludedDomains and ExcludedWords are the comma separated lists as typed.
	ExcludedDomains string
	ExcludedWords   string

	// ProcessedExcludedDomains holds ExcludedDomains resolved to hostnames.
	ProcessedExcludedDomains []string
	// ProcessedExcludedWords holds ExcludedWords lower-cased.
	ProcessedExcludedWords []string

	LinkHistory []string
	CopyHistory []string

	// DragThreshold is the smallest rectangle side, in cells, that commits.
	DragThreshold int
}

// Defaults returns the settings used when nothing else is available.
func Defaults() Settings {
	s := Settings{
		TabLimit:                    DefaultTabLimit,
		SelectionStyle:              DefaultSelectionStyle,
		SelectionBoxStyle:           DefaultSelectionBoxStyle,
		SelectionBoxColor:           DefaultSelectionBoxColor,
		HighlightStyle:              DefaultHighlightStyle,
		OpenNextToParent:            true,
		ShowContextMenu:             true,
		RemoveDuplicatesInSelection: true,
		CheckDuplicatesOnCopy:       true,
		UseHistory:                  true,
		DragThreshold:               DefaultDragThreshold,
	}
	s.ProcessExclusions()
	return s
}

// FromConfig builds a snapshot from the loaded configuration. Histories are
// left empty; Provider fills them from the history store.
func FromConfig() Settings {
	d := Defaults()
	s := Settings{
		TabLimit:                    config.GetInt("tab_limit", d.TabLimit),
		SelectionStyle:              config.Get("selection_style", d.SelectionStyle),
		SelectionBoxStyle:           config.Get("selection_box_style", ""),
		SelectionBoxColor:           config.Get("selection_box_color", d.SelectionBoxColor),
		HighlightStyle:              config.Get("highlight_style", d.HighlightStyle),
		OpenInNewWindow:             config.GetBool("open_in_new_window", d.OpenInNewWindow),
		ReverseOrder:                config.GetBool("reverse_order", d.ReverseOrder),
		OpenNextToParent:            config.GetBool("open_next_to_parent", d.OpenNextToParent),
		ShowContextMenu:             config.GetBool("show_context_menu", d.ShowContextMenu),
		ApplyExclusionsOnCopy:       config.GetBool("apply_exclusions_on_copy", d.ApplyExclusionsOnCopy),
		RemoveDuplicatesInSelection: config.GetBool("remove_duplicates_in_selection", d.RemoveDuplicatesInSelection),
		CheckDuplicatesOnCopy:       config.GetBool("check_duplicates_on_copy", d.CheckDuplicatesOnCopy),
		UseHistory:                  config.GetBool("use_history", d.UseHistory),
		UseCopyHistory:              config.GetBool("use_copy_history", d.UseCopyHistory),
		ExcludedDomains:             config.Get("excluded_domains", ""),
		ExcludedWords:               config.Get("excluded_words", ""),
		DragThreshold:               config.GetInt("drag_threshold", d.DragThreshold),
	}
	s.ApplyLegacyStyle()
	s.ProcessExclusions()
	return s
}

// ApplyLegacyStyle derives the box style and color from SelectionStyle when
// no box style is set. An unknown legacy style leaves the default box.
func (s *Settings) ApplyLegacyStyle() {
	if s.SelectionBoxStyle != "" {
		return
	}
	if b, ok := LegacyStyle(s.SelectionStyle); ok {
		s.SelectionBoxStyle = b.Border
		s.SelectionBoxColor = b.Color
		return
	}
	s.SelectionBoxStyle = DefaultSelectionBoxStyle
}

// ProcessExclusions recomputes the processed exclusion lists from the raw ones.
func (s *Settings) ProcessExclusions() {
	e := classify.NewExclusions(ParseList(s.ExcludedDomains), ParseList(s.ExcludedWords))
	s.ProcessedExcludedDomains = e.Domains()
	s.ProcessedExcludedWords = e.Words()
}

// Exclusions returns the processed exclusion lists ready for classification.
func (s Settings) Exclusions() classify.Exclusions {
	return classify.NewExclusions(s.ProcessedExcludedDomains, s.ProcessedExcludedWords)
}

// Clone returns a copy that shares no slices with s.
func (s Settings) Clone() Settings {
	s.ProcessedExcludedDomains = slices.Clone(s.ProcessedExcludedDomains)
	s.ProcessedExcludedWords = slices.Clone(s.ProcessedExcludedWords)
	s.LinkHistory = slices.Clone(s.LinkHistory)
	s.CopyHistory = slices.Clone(s.CopyHistory)
	return s
}

// ParseList splits a comma separated list, trimming blanks.
func ParseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that settings values are usable.
func Validate(s *Settings) error {
	if s == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if s.TabLimit < 0 {
		return fmt.Errorf("invalid tabLimit value: %d", s.TabLimit)
	}
	if s.DragThreshold < 0 {
		return fmt.Errorf("invalid dragThreshold value: %d", s.DragThreshold)
	}
	if !slices.Contains(BoxStyles(), s.SelectionBoxStyle) {
		return fmt.Errorf("invalid selectionBoxStyle value: %s", s.SelectionBoxStyle)
	}
	if !slices.Contains(HighlightStyles(), s.HighlightStyle) {
		return fmt.Errorf("invalid highlightStyle value: %s", s.HighlightStyle)
	}
	if !IsHexColor(s.SelectionBoxColor) {
		return fmt.Errorf("invalid selectionBoxColor value: %s", s.SelectionBoxColor)
	}
	return nil
}

// IsHexColor reports whether c is a #rgb or #rrggbb color.
func IsHexColor(c string) bool {
	if (len(c) != 4 && len(c) != 7) || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
