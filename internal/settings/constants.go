// Package settings resolves the selection settings snapshot.
package settings

// Selection box border styles.
const (
	BoxStyleSolid  = "solid"
	BoxStyleDashed = "dashed"
	BoxStyleDotted = "dotted"
	BoxStyleSubtle = "subtle"
)

// Legacy combined selection styles.
const (
	StyleDashedBlue = "dashed-blue"
	StyleDashedRed  = "dashed-red"
	StyleSolidGreen = "solid-green"
	StyleSubtleGray = "subtle-gray"
)

// Highlight styles applied to classified links.
const (
	HighlightClassicYellow = "classic-yellow"
	HighlightUnderline     = "underline"
	HighlightOutline       = "outline"
	HighlightInverse       = "inverse"
)

// Default values.
const (
	DefaultTabLimit          = 15
	DefaultSelectionBoxStyle = BoxStyleSolid
	DefaultSelectionBoxColor = "#007bff"
	DefaultSelectionStyle    = StyleDashedBlue
	DefaultHighlightStyle    = HighlightClassicYellow
	DefaultDragThreshold     = 5
)

// BoxStyle is a border style with its color.
type BoxStyle struct {
	Border string
	Color  string
}

// legacyStyles maps the old combined selectionStyle to the box style and color.
var legacyStyles = map[string]BoxStyle{
	StyleDashedBlue: {Border: BoxStyleDashed, Color: "#007bff"},
	StyleDashedRed:  {Border: BoxStyleDotted, Color: "#c90062"},
	StyleSolidGreen: {Border: BoxStyleSolid, Color: "#28a745"},
	StyleSubtleGray: {Border: BoxStyleSubtle, Color: "#343a40"},
}

// LegacyStyle returns the box style a legacy selectionStyle stands for.
func LegacyStyle(style string) (BoxStyle, bool) {
	b, ok := legacyStyles[style]
	return b, ok
}

// BoxStyles lists the valid border styles.
func BoxStyles() []string {
	return []string{BoxStyleSolid, BoxStyleDashed, BoxStyleDotted, BoxStyleSubtle}
}

// LegacySelectionStyles lists the valid legacy selection styles.
func LegacySelectionStyles() []string {
	return []string{StyleDashedBlue, StyleDashedRed, StyleSolidGreen, StyleSubtleGray}
}

// HighlightStyles lists the valid highlight styles.
func HighlightStyles() []string {
	return []string{HighlightClassicYellow, HighlightUnderline, HighlightOutline, HighlightInverse}
}
