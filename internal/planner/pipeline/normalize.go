// internal/planner/pipeline/normalize.go
package pipeline

import (
	"fmt"
	"net/url"
	"strings"

	"itinerary-workers/internal/planner/links"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	mapPreviewClass = "map-preview"
	externalRel     = "noopener noreferrer"
)

var (
	hotelHosts    = []string{"booking.com", "hotels.com", "agoda.com", "expedia.com", "trivago.com"}
	carHosts      = []string{"rentalcars.com", "discovercars.com", "hertz.com", "avis.com", "europcar.com"}
	transferHosts = []string{"welcomepickups.com", "kiwitaxi.com", "holidaytaxis.com", "suntransfers.com"}
	activityHosts = []string{"getyourguide.com", "viator.com"}
)

// NormalizeLinks opens map links in a new tab, points hotel, car and transfer links at
// the matching on-page widget, tags activity links with the partner id and appends one
// map-preview route over every map query. Links inside widgets are left alone.
func NormalizeLinks(doc string, factory *links.Factory) (string, error) {
	d, err := parseDocument(doc)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	anchors := make(map[string]bool)
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if id, ok := attr(n, "id"); ok {
				anchors[id] = true
			}
		}
		return true
	})

	changed := false
	var mapQueries []string
	seenQuery := make(map[string]bool)

	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if hasClass(n, widgetClass) || hasClass(n, mapPreviewClass) {
			return false
		}
		if n.DataAtom != atom.A {
			return true
		}
		href, ok := attr(n, "href")
		if !ok {
			return true
		}
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || u.Host == "" {
			return true
		}
		host := strings.ToLower(u.Host)

		switch {
		case isMapsURL(u):
			changed = setAttr(n, "target", "_blank") || changed
			changed = setAttr(n, "rel", externalRel) || changed
			if q := mapQuery(u); q != "" && !seenQuery[q] {
				seenQuery[q] = true
				mapQueries = append(mapQueries, q)
			}
		case hostIn(host, hotelHosts) && anchors[WidgetHotels]:
			changed = pointAtWidget(n, WidgetHotels) || changed
		case hostIn(host, carHosts) && anchors[WidgetCars]:
			changed = pointAtWidget(n, WidgetCars) || changed
		case hostIn(host, transferHosts) && anchors[WidgetTransfers]:
			changed = pointAtWidget(n, WidgetTransfers) || changed
		case hostIn(host, activityHosts):
			q := u.Query()
			if q.Get("partner_id") == "" {
				q.Set("partner_id", factory.PartnerID())
				u.RawQuery = q.Encode()
				changed = setAttr(n, "href", u.String()) || changed
			}
		}
		return true
	})

	if setMapPreview(d, factory, mapQueries) {
		changed = true
	}

	if !changed {
		return doc, nil
	}
	return d.render()
}

func pointAtWidget(n *html.Node, id string) bool {
	changed := setAttr(n, "href", "#"+id)
	changed = removeAttr(n, "target") || changed
	return changed
}

// setMapPreview replaces any existing preview with one built from queries.
func setMapPreview(d *document, factory *links.Factory, queries []string) bool {
	var existing []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, mapPreviewClass) {
			existing = append(existing, n)
			return false
		}
		return true
	})

	if len(queries) == 0 {
		for _, n := range existing {
			n.Parent.RemoveChild(n)
		}
		return len(existing) > 0
	}

	href := factory.Directions(queries)
	if len(existing) == 1 && existing[0].Parent == d.root && existing[0].NextSibling == nil {
		if a := findNode(existing[0], isAnchor); a != nil {
			if cur, _ := attr(a, "href"); cur == href {
				return false
			}
		}
	}
	for _, n := range existing {
		n.Parent.RemoveChild(n)
	}

	p := &html.Node{
		Type: html.ElementNode, Data: "p", DataAtom: atom.P,
		Attr: []html.Attribute{{Key: "class", Val: mapPreviewClass}},
	}
	a := &html.Node{
		Type: html.ElementNode, Data: "a", DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "href", Val: href},
			{Key: "target", Val: "_blank"},
			{Key: "rel", Val: externalRel},
		},
	}
	label := fmt.Sprintf("View all %d places on a map", len(queries))
	if shown := factory.DirectionStops(queries); shown < len(queries) {
		label = fmt.Sprintf("View %d of %d places on a map", shown, len(queries))
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	p.AppendChild(a)
	d.root.AppendChild(p)
	return true
}

func isAnchor(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.A
}

func isMapsURL(u *url.URL) bool {
	host := strings.ToLower(u.Host)
	switch {
	case host == "maps.google.com", host == "maps.app.goo.gl":
		return true
	case strings.HasSuffix(host, "google.com") && strings.HasPrefix(u.Path, "/maps"):
		return true
	case host == "goo.gl" && strings.HasPrefix(u.Path, "/maps"):
		return true
	}
	return false
}

// mapQuery extracts the place searched by a maps link, if any.
func mapQuery(u *url.URL) string {
	q := u.Query()
	for _, key := range []string{"query", "q"} {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			return v
		}
	}
	return ""
}

func hostIn(host string, hosts []string) bool {
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
