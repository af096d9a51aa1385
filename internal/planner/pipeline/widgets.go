// internal/planner/pipeline/widgets.go
package pipeline

import (
	"fmt"
	"strings"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/links"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	widgetClass     = "trip-widget"
	widgetIDAttr    = "data-widget-id"
	widgetDedupAttr = "data-dedup-key"
)

// Widget anchor ids; normalized booking links point at these.
const (
	WidgetHotels     = "book-hotels"
	WidgetCars       = "book-cars"
	WidgetTransfers  = "book-transfers"
	WidgetActivities = "book-activities"
	WidgetInsurance  = "book-insurance"
	WidgetFlights    = "book-flights"
)

// DefaultWidgets returns the standard commerce blocks for a destination.
func DefaultWidgets(f *links.Factory) []models.WidgetDescriptor {
	dest := html.EscapeString(f.Destination())
	if dest == "" {
		dest = "your destination"
	}
	cta := func(title, body, href, label string) string {
		return fmt.Sprintf(`<h3>%s</h3><p>%s</p><a class="widget-cta" href="%s" target="_blank" rel="nofollow sponsored noopener">%s</a>`,
			title, body, html.EscapeString(href), label)
	}

	return []models.WidgetDescriptor{
		{
			ID:                  WidgetFlights,
			TargetSectionMarker: models.SectionOverview,
			DedupKey:            "flights",
			RenderFragment:      cta("Find flights", "Compare fares to "+dest+" across airlines.", f.Flights(""), "Search flights"),
		},
		{
			ID:                  WidgetTransfers,
			TargetSectionMarker: models.SectionTransport,
			DedupKey:            "transfers",
			RenderFragment:      cta("Airport transfers", "Pre-book a private pickup on arrival in "+dest+".", f.Transfers("airport transfer"), "Book a transfer"),
		},
		{
			ID:                  WidgetCars,
			TargetSectionMarker: models.SectionTransport,
			DedupKey:            "cars",
			RenderFragment:      cta("Rent a car", "Compare rental cars available in "+dest+".", f.Cars(""), "Search rental cars"),
		},
		{
			ID:                  WidgetHotels,
			TargetSectionMarker: models.SectionLodging,
			DedupKey:            "hotels",
			RenderFragment:      cta("Find your stay", "Compare hotels and apartments in "+dest+".", f.Hotels(""), "Search hotels"),
		},
		{
			ID:                  WidgetActivities,
			TargetSectionMarker: models.SectionAttractions,
			DedupKey:            "activities",
			RenderFragment:      cta("Skip-the-line tickets", "Book tours and timed entry for the top sights in "+dest+".", f.Activities("tickets"), "Browse activities"),
		},
		{
			ID:                  WidgetInsurance,
			TargetSectionMarker: models.SectionTips,
			DedupKey:            "insurance",
			RenderFragment:      cta("Travel insurance", "Cover medical costs, delays and lost luggage for your trip.", f.Insurance(""), "Get a quote"),
		},
	}
}

// WidgetsFor keeps the default widgets whose target section is one of sections, so a
// document covering fewer sections does not grow headings that only hold an ad.
func WidgetsFor(f *links.Factory, sections []string) []models.WidgetDescriptor {
	keep := make(map[string]bool, len(sections))
	for _, s := range sections {
		keep[s] = true
	}
	all := DefaultWidgets(f)
	out := make([]models.WidgetDescriptor, 0, len(all))
	for _, w := range all {
		if keep[w.TargetSectionMarker] {
			out = append(out, w)
		}
	}
	return out
}

// InjectWidgets anchors each widget at the end of its target section, creating the
// section heading when missing. A dedup key already rendered anywhere in the document
// is not rendered again, and duplicate blocks are dropped keeping the first. A document
// that needs no change is returned as is, so the stage is idempotent.
func InjectWidgets(doc string, widgets []models.WidgetDescriptor) (string, error) {
	d, err := parseDocument(doc)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	changed := dedupWidgets(d)

	for _, w := range widgets {
		if w.DedupKey == "" || w.TargetSectionMarker == "" {
			continue
		}
		if findNode(d.root, hasDedupKey(w.DedupKey)) != nil {
			continue
		}

		s, ok := d.find(w.TargetSectionMarker)
		if !ok {
			s = d.synthesize(w.TargetSectionMarker)
		}

		block, err := renderWidget(w)
		if err != nil {
			return "", fmt.Errorf("widget %s: %w", w.ID, err)
		}
		parent := s.heading.Parent
		if end := s.end(); end != nil {
			parent.InsertBefore(block, end)
		} else {
			parent.AppendChild(block)
		}
		changed = true
	}

	if !changed {
		return doc, nil
	}
	return d.render()
}

func renderWidget(w models.WidgetDescriptor) (*html.Node, error) {
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: widgetClass},
			{Key: "id", Val: w.ID},
			{Key: widgetIDAttr, Val: w.ID},
			{Key: widgetDedupAttr, Val: w.DedupKey},
		},
	}
	children, err := html.ParseFragment(strings.NewReader(w.RenderFragment), div)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		div.AppendChild(c)
	}
	return div, nil
}

func hasDedupKey(key string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		v, ok := attr(n, widgetDedupAttr)
		return ok && v == key
	}
}

// dedupWidgets removes every widget block whose dedup key was already seen.
func dedupWidgets(d *document) bool {
	seen := make(map[string]bool)
	var dupes []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		key, ok := attr(n, widgetDedupAttr)
		if !ok {
			return true
		}
		if seen[key] {
			dupes = append(dupes, n)
		}
		seen[key] = true
		return false
	})
	for _, n := range dupes {
		n.Parent.RemoveChild(n)
	}
	return len(dupes) > 0
}

func insideWidget(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hasClass(p, widgetClass) {
			return true
		}
	}
	return false
}
