// Package page lays an HTML document out on a character grid and exposes its
// hyperlinks with the rectangles they occupy.
//
// One grid cell is one unit of document space: an anchor whose text spans
// columns 4..9 of line 2 has the rectangle {4, 2, 10, 3}.
package page

import (
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"golang.org/x/net/html"
)

// DefaultWidth is the grid width used when none is given.
const DefaultWidth = 80

// imagePlaceholder stands in for img and svg elements.
const imagePlaceholder = "[img]"

// Span is a run of cells on one line.
type Span struct {
	Line  int
	Start int
	End   int
}

// Link is an a[href] element of the laid-out document.
type Link struct {
	ID      int
	Href    string
	RawHref string
	Text    string
	Spans   []Span

	Visible    bool
	HasContent bool
}

// Rect returns the document-space bounding box of the link. A link with no
// cells has the zero rectangle.
func (l Link) Rect() geometry.Rect {
	var r geometry.Rect
	for _, s := range l.Spans {
		r = r.Union(geometry.Rect{
			Left:   float64(s.Start),
			Top:    float64(s.Line),
			Right:  float64(s.End),
			Bottom: float64(s.Line + 1),
		})
	}
	return r
}

// Document is a laid-out page.
type Document struct {
	URL   string
	Title string
	Width int
	Lines []string
	Links []Link
}

// Parse lays out the HTML read from r. Relative links resolve against
// docURL, or against the document's base element when present.
func Parse(r io.Reader, docURL string, width int) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultWidth
	}

	base, _ := url.Parse(docURL)
	if href := baseHref(root); href != "" && base != nil {
		if ref, err := base.Parse(href); err == nil {
			base = ref
		}
	}

	l := &layout{width: width, base: base}
	l.doc = &Document{URL: docURL, Width: width}
	l.doc.Title = strings.TrimSpace(textContent(findElement(root, "title")))
	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	l.walk(body, inherited{})
	l.newline()
	l.trimTrailingBlank()
	for _, link := range l.links {
		l.doc.Links = append(l.doc.Links, *link)
	}
	return l.doc, nil
}

// ParseString lays out an HTML string.
func ParseString(s, docURL string, width int) (*Document, error) {
	return Parse(strings.NewReader(s), docURL, width)
}

// Height returns the number of lines.
func (d *Document) Height() int { return len(d.Lines) }

// Link returns the link with the id.
func (d *Document) Link(id int) (Link, bool) {
	if id < 0 || id >= len(d.Links) {
		return Link{}, false
	}
	return d.Links[id], true
}

var skipped = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "title": true, "meta": true, "link": true,
}

var blocks = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tr": true, "ul": true,
}

// spaced blocks are followed by an empty line.
var spaced = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "ul": true, "ol": true, "pre": true, "blockquote": true,
	"table": true,
}

// inherited carries the computed style that flows to descendants.
type inherited struct {
	invisible bool // visibility:hidden
	noPointer bool // pointer-events:none
	pre       bool
	link      *Link
}

type layout struct {
	width int
	base  *url.URL
	doc   *Document
	links []*Link

	line       strings.Builder
	col        int
	needSpace  bool
	blankAbove bool
}

func (l *layout) walk(n *html.Node, in inherited) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			l.text(c.Data, in)
		case html.ElementNode:
			l.element(c, in)
		}
	}
}

func (l *layout) element(n *html.Node, in inherited) {
	tag := n.Data
	if skipped[tag] {
		return
	}
	style := parseStyle(getAttr(n, "style"))
	hidden := hasAttr(n, "hidden") || style["display"] == "none"

	if tag == "a" && hasAttr(n, "href") {
		link := l.openLink(n)
		if hidden {
			// display:none boxes have no geometry.
			link.Visible = false
			return
		}
		in.link = link
	} else if hidden {
		return
	}

	switch style["visibility"] {
	case "hidden", "collapse":
		in.invisible = true
	case "visible":
		in.invisible = false
	}
	switch style["pointer-events"] {
	case "none":
		in.noPointer = true
	case "auto":
		in.noPointer = false
	}

	if in.link != nil && (in.invisible || in.noPointer) {
		in.link.Visible = false
	}

	switch tag {
	case "br":
		l.newline()
		return
	case "img", "svg":
		if in.link != nil {
			in.link.HasContent = true
		}
		l.word(imagePlaceholder, in)
		if tag == "svg" {
			return
		}
	case "pre":
		in.pre = true
	}

	if blocks[tag] {
		l.newline()
		if tag == "li" {
			l.word("•", in)
			l.needSpace = true
		}
		if tag == "hr" {
			l.word(strings.Repeat("─", l.width), in)
			l.newline()
			return
		}
	}

	l.walk(n, in)

	if blocks[tag] {
		l.newline()
		if spaced[tag] {
			l.blank()
		}
	}
}

func (l *layout) openLink(n *html.Node) *Link {
	raw := getAttr(n, "href")
	href := strings.TrimSpace(raw)
	if l.base != nil {
		if ref, err := l.base.Parse(href); err == nil {
			href = ref.String()
		}
	}
	link := &Link{
		ID:      len(l.links),
		Href:    href,
		RawHref: raw,
		Visible: true,
	}
	l.links = append(l.links, link)
	return link
}

func (l *layout) text(data string, in inherited) {
	if in.pre {
		for i, part := range strings.Split(data, "\n") {
			if i > 0 {
				l.newline()
			}
			if part != "" {
				l.place(part, in)
			}
		}
		return
	}

	if data != "" && isSpace(data[0]) {
		l.needSpace = true
	}
	for _, w := range strings.Fields(data) {
		l.word(w, in)
		l.needSpace = true
	}
	if data != "" && !isSpace(data[len(data)-1]) {
		l.needSpace = false
	}
}

// word places w, wrapping to the next line when it does not fit.
func (l *layout) word(w string, in inherited) {
	width := lipgloss.Width(w)
	if l.col > 0 && l.needSpace {
		if l.col+1+width > l.width {
			l.newline()
		} else {
			l.line.WriteByte(' ')
			l.col++
		}
	} else if l.col > 0 && l.col+width > l.width {
		l.newline()
	}
	l.needSpace = false

	for width > l.width {
		if l.col > 0 {
			l.newline()
		}
		head, rest := splitCells(w, l.width)
		l.place(head, in)
		l.newline()
		w = rest
		width = lipgloss.Width(w)
	}
	l.place(w, in)
}

// place writes s at the cursor without wrapping and records link cells.
func (l *layout) place(s string, in inherited) {
	width := lipgloss.Width(s)
	if width == 0 {
		return
	}
	if in.invisible {
		l.line.WriteString(strings.Repeat(" ", width))
	} else {
		l.line.WriteString(s)
	}

	if link := in.link; link != nil {
		if strings.TrimSpace(s) != "" && s != imagePlaceholder {
			link.HasContent = true
			if link.Text != "" {
				link.Text += " "
			}
			link.Text += strings.TrimSpace(s)
		}
		line := len(l.doc.Lines)
		if n := len(link.Spans); n > 0 && link.Spans[n-1].Line == line && link.Spans[n-1].End >= l.col-1 {
			link.Spans[n-1].End = l.col + width
		} else {
			link.Spans = append(link.Spans, Span{Line: line, Start: l.col, End: l.col + width})
		}
	}
	l.col += width
	l.blankAbove = false
}

func (l *layout) newline() {
	if l.col == 0 && l.line.Len() == 0 {
		l.needSpace = false
		return
	}
	l.doc.Lines = append(l.doc.Lines, strings.TrimRight(l.line.String(), " "))
	l.line.Reset()
	l.col = 0
	l.needSpace = false
}

func (l *layout) blank() {
	if l.blankAbove || len(l.doc.Lines) == 0 {
		return
	}
	l.doc.Lines = append(l.doc.Lines, "")
	l.blankAbove = true
}

func (l *layout) trimTrailingBlank() {
	for n := len(l.doc.Lines); n > 0 && l.doc.Lines[n-1] == ""; n-- {
		l.doc.Lines = l.doc.Lines[:n-1]
	}
}

func splitCells(s string, cells int) (string, string) {
	var head strings.Builder
	for i, r := range s {
		if lipgloss.Width(head.String()+string(r)) > cells {
			return head.String(), s[i:]
		}
		head.WriteRune(r)
	}
	return s, ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}

// parseStyle reads an inline style attribute into lower-case properties.
func parseStyle(attr string) map[string]string {
	if attr == "" {
		return nil
	}
	props := make(map[string]string)
	for _, decl := range strings.Split(attr, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		props[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(value)
	}
	return props
}

func baseHref(root *html.Node) string {
	if b := findElement(root, "base"); b != nil {
		return getAttr(b, "href")
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return sb.String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
