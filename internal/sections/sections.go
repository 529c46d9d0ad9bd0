// Package sections maps generated markdown onto the stable section
// identifiers of a briefing.
package sections

import (
	"strings"
	"unicode"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"morningbrief/internal/core"
)

// Section is a heading of a briefing matched to its identifier.
type Section struct {
	ID    core.SectionID `json:"id"`
	Title string         `json:"title"` // Heading text as written by the model
	Level int            `json:"level"`
	Icon  string         `json:"icon"`
}

func newParser() *parser.Parser {
	return parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
}

// Extract walks the markdown headings and returns every one that names a
// known section, in document order. Repeated sections are reported once.
func Extract(md string) []Section {
	doc := markdown.Parse([]byte(md), newParser())

	var found []Section
	seen := map[core.SectionID]bool{}
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		h, ok := node.(*ast.Heading)
		if !ok || !entering {
			return ast.GoToNext
		}
		if h.Level < 2 || h.Level > 3 {
			return ast.SkipChildren
		}
		title := strings.TrimSpace(headingText(h))
		if spec, ok := match(title); ok && !seen[spec.ID] {
			seen[spec.ID] = true
			found = append(found, Section{ID: spec.ID, Title: title, Level: h.Level, Icon: spec.Icon})
		}
		return ast.SkipChildren
	})
	return found
}

// Detect returns the identifiers of the sections present in md.
func Detect(md string) []core.SectionID {
	secs := Extract(md)
	ids := make([]core.SectionID, len(secs))
	for i, s := range secs {
		ids[i] = s.ID
	}
	return ids
}

// Missing returns the identifiers absent from md, in briefing order.
func Missing(md string) []core.SectionID {
	present := map[core.SectionID]bool{}
	for _, id := range Detect(md) {
		present[id] = true
	}
	var missing []core.SectionID
	for _, spec := range core.Sections() {
		if !present[spec.ID] {
			missing = append(missing, spec.ID)
		}
	}
	return missing
}

// Content returns the markdown under the heading of section id, up to the
// next heading of the same or higher level. It returns false when the
// section is absent.
func Content(md string, id core.SectionID) (string, bool) {
	lines := strings.Split(md, "\n")
	start, level := -1, 0
	for i, line := range lines {
		lvl, title := headingLine(line)
		if lvl == 0 {
			continue
		}
		if start >= 0 && lvl <= level {
			return strings.TrimSpace(strings.Join(lines[start+1:i], "\n")), true
		}
		if start < 0 && lvl >= 2 && lvl <= 3 {
			if spec, ok := match(title); ok && spec.ID == id {
				start, level = i, lvl
			}
		}
	}
	if start < 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(lines[start+1:], "\n")), true
}

// RenderHTML converts a briefing to HTML with heading anchors.
func RenderHTML(md string) string {
	if md == "" {
		return ""
	}
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return string(markdown.ToHTML([]byte(md), newParser(), renderer))
}

func headingText(node ast.Node) string {
	var b strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if leaf := n.AsLeaf(); leaf != nil {
			b.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	return b.String()
}

// headingLine parses an ATX heading line, returning its level and text.
func headingLine(line string) (int, string) {
	trimmed := strings.TrimLeft(line, " ")
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(trimmed) || trimmed[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(strings.Trim(trimmed[level:], "# "))
}

// match compares a heading against the known section titles, ignoring
// case, emphasis markers and any leading emoji.
func match(title string) (core.SectionSpec, bool) {
	norm := normalize(title)
	for _, spec := range core.Sections() {
		if norm == normalize(spec.Title) {
			return spec, true
		}
	}
	return core.SectionSpec{}, false
}

func normalize(s string) string {
	s = strings.Trim(s, "*_ ")
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToUpper(strings.TrimSpace(s))
}
