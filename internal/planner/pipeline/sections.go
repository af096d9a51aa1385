// internal/planner/pipeline/sections.go
package pipeline

import (
	"bytes"
	"strings"
	"unicode"

	"itinerary-workers/internal/models"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sectionAliases lists alternative headings that address a canonical section.
var sectionAliases = map[string][]string{
	models.SectionOverview:    {"overview", "trip summary", "at a glance"},
	models.SectionBudget:      {"budget", "estimated costs", "costs"},
	models.SectionTransport:   {"transportation", "transport", "getting there"},
	models.SectionLodging:     {"accommodation", "accommodations", "lodging", "hotels"},
	models.SectionAttractions: {"top attractions", "attractions", "things to do", "sightseeing"},
	models.SectionDining:      {"food and dining", "where to eat", "dining", "local cuisine"},
	models.SectionItinerary:   {"itinerary", "day by day", "day-by-day"},
	models.SectionPacking:     {"what to pack", "packing"},
	models.SectionTips:        {"tips", "practical tips"},
	models.SectionApps:        {"apps", "helpful apps"},
	models.SectionEmergency:   {"emergency", "safety", "emergency contacts"},
}

// section is a heading plus the sibling nodes up to the next heading of the same or higher level.
type section struct {
	heading *html.Node
	level   int
	nodes   []*html.Node
}

// end is the node after the section, or nil when the section runs to the end of its parent.
func (s section) end() *html.Node {
	last := s.heading
	if len(s.nodes) > 0 {
		last = s.nodes[len(s.nodes)-1]
	}
	return last.NextSibling
}

func (s section) contains(pred func(*html.Node) bool) bool {
	for _, n := range append([]*html.Node{s.heading}, s.nodes...) {
		if findNode(n, pred) != nil {
			return true
		}
	}
	return false
}

// document is a parsed fragment hung under a synthetic body node.
type document struct {
	root *html.Node
}

func parseDocument(doc string) (*document, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(doc), root)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &document{root: root}, nil
}

func (d *document) render() (string, error) {
	var buf bytes.Buffer
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// sections lists the top-level sections in document order: headings at the shallowest
// level in use, outside widget blocks. Deeper headings such as day entries stay part of
// the section that contains them.
func (d *document) sections() []section {
	var headings []*html.Node
	top := 0
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, widgetClass) {
			return false
		}
		level := headingLevel(n)
		if level == 0 {
			return true
		}
		headings = append(headings, n)
		if top == 0 || level < top {
			top = level
		}
		return false
	})

	var out []section
	for _, h := range headings {
		if headingLevel(h) != top {
			continue
		}
		s := section{heading: h, level: top}
		for sib := h.NextSibling; sib != nil; sib = sib.NextSibling {
			if l := headingLevel(sib); l > 0 && l <= top {
				break
			}
			s.nodes = append(s.nodes, sib)
		}
		out = append(out, s)
	}
	return out
}

// find returns the first top-level section addressed by marker.
func (d *document) find(marker string) (section, bool) {
	secs := d.sections()
	want := normalizeHeading(marker)
	for _, s := range secs {
		if normalizeHeading(nodeText(s.heading)) == want {
			return s, true
		}
	}
	for _, s := range secs {
		if headingMatches(nodeText(s.heading), marker) {
			return s, true
		}
	}
	return section{}, false
}

// synthesize adds a top-level heading for marker before the next canonical section that
// follows it, or after the last top-level section.
func (d *document) synthesize(marker string) section {
	secs := d.sections()
	level := 2
	if len(secs) > 0 && secs[0].level < level {
		level = secs[0].level
	}
	tag := atom.H2
	if level == 1 {
		tag = atom.H1
	}
	h := &html.Node{Type: html.ElementNode, Data: tag.String(), DataAtom: tag}
	h.AppendChild(&html.Node{Type: html.TextNode, Data: marker})
	created := section{heading: h, level: level}

	if idx := canonicalIndex(marker); idx >= 0 {
		for _, later := range models.CanonicalSections[idx+1:] {
			if s, ok := d.find(later); ok {
				s.heading.Parent.InsertBefore(h, s.heading)
				return created
			}
		}
	}

	if len(secs) == 0 {
		d.root.AppendChild(h)
		return created
	}
	last := secs[len(secs)-1]
	if end := last.end(); end != nil {
		last.heading.Parent.InsertBefore(h, end)
	} else {
		last.heading.Parent.AppendChild(h)
	}
	return created
}

func canonicalIndex(marker string) int {
	for i, s := range models.CanonicalSections {
		if s == marker {
			return i
		}
	}
	return -1
}

func headingMatches(text, marker string) bool {
	h := " " + normalizeHeading(text) + " "
	if strings.Contains(h, " "+normalizeHeading(marker)+" ") {
		return true
	}
	for _, alias := range sectionAliases[marker] {
		if strings.Contains(h, " "+normalizeHeading(alias)+" ") {
			return true
		}
	}
	return false
}

// normalizeHeading lowercases, maps & to "and" and drops everything but letters, digits and single spaces.
func normalizeHeading(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "&", " and ")
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			space = false
		case !space && b.Len() > 0:
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	}
	return 0
}

// walk visits n and its descendants depth first; fn returning false skips children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if fn(c) {
			walk(c, fn)
		}
		c = next
	}
}

func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// setAttr sets key and reports whether the value changed.
func setAttr(n *html.Node, key, val string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			if a.Val == val {
				return false
			}
			n.Attr[i].Val = val
			return true
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	return true
}

func removeAttr(n *html.Node, key string) bool {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}
