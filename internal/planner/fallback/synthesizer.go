// internal/planner/fallback/synthesizer.go
package fallback

import (
	"fmt"
	"html"
	"strings"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/budget"
	"itinerary-workers/internal/planner/destinations"
)

// MaxDays caps the number of daily sections rendered.
const MaxDays = 30

// PreviewDays is how many days a preview document covers.
const PreviewDays = 2

// Synthesizer renders a complete plan from static destination data. It never fails and
// makes no external calls.
type Synthesizer struct {
	catalog *destinations.Catalog
	budget  *budget.Engine
}

func New(catalog *destinations.Catalog) *Synthesizer {
	if catalog == nil {
		catalog = destinations.Default()
	}
	return &Synthesizer{catalog: catalog, budget: budget.NewEngine(catalog)}
}

type profile struct {
	name          string
	highlights    []string
	cuisine       []string
	neighborhoods []string
	transport     string
	apps          []string
	emergency     string
	dest          destinations.Destination
	curated       bool
}

func (s *Synthesizer) profileFor(destination string) profile {
	name := strings.TrimSpace(destination)
	if name == "" {
		name = "Your Trip"
	}
	if d, ok := s.catalog.Destination(destination); ok {
		return profile{
			name:          d.Name,
			highlights:    d.Highlights,
			cuisine:       d.Cuisine,
			neighborhoods: d.Neighborhoods,
			transport:     d.Transport,
			apps:          d.Apps,
			emergency:     d.Emergency,
			dest:          d,
			curated:       true,
		}
	}
	return profile{
		name: name,
		highlights: []string{
			name + " old town",
			name + " city museum",
			name + " central market",
			name + " viewpoint",
			name + " main park",
		},
		cuisine: []string{
			"a regional specialty at a family-run restaurant",
			"street food at the busiest local market",
			"a long lunch at a neighborhood cafe",
		},
		neighborhoods: []string{name + " city center", name + " old town"},
		transport:     "Check the local transit authority for day passes; taxis and ride-hailing apps fill the gaps.",
		apps:          []string{"Google Maps", "Rome2Rio", "XE Currency"},
		emergency:     "Dial 112 from any mobile phone in most countries, and save your embassy's number before you travel.",
	}
}

// Synthesize renders the document for mode. Preview documents carry the overview, budget,
// lodging, attractions and the first days only.
func (s *Synthesizer) Synthesize(req models.TripRequest, mode models.Mode) string {
	p := s.profileFor(req.Destination)
	b := s.budget.Compute(budget.InputFromRequest(req))

	var w strings.Builder
	days := req.Days()
	fmt.Fprintf(&w, "<h1>%d-Day %s Itinerary</h1>\n", days, esc(p.name))

	s.overview(&w, req, p, b)
	s.budgetSection(&w, b)
	if mode != models.ModePreview {
		section(&w, models.SectionTransport)
		fmt.Fprintf(&w, "<p>%s</p>\n", esc(p.transport))
	}
	s.lodging(&w, p, req.Style)
	s.attractions(&w, p)

	if mode == models.ModePreview {
		s.itinerary(&w, req, p, PreviewDays)
		if days > PreviewDays {
			fmt.Fprintf(&w, "<p><em>The full plan covers all %d days, plus dining, packing and safety notes.</em></p>\n", days)
		}
		return w.String()
	}

	s.dining(&w, p, req.Dietary)
	s.itinerary(&w, req, p, MaxDays)
	s.packing(&w, req, p)
	s.tips(&w, p)
	s.apps(&w, p)
	section(&w, models.SectionEmergency)
	fmt.Fprintf(&w, "<p>%s</p>\n", esc(p.emergency))
	fmt.Fprintf(&w, "<p>Consider <a href=\"insurance:%s\">travel insurance</a> that covers medical evacuation.</p>\n", esc(p.name))
	return w.String()
}

func (s *Synthesizer) overview(w *strings.Builder, req models.TripRequest, p profile, b models.BudgetBreakdown) {
	section(w, models.SectionOverview)
	fmt.Fprintf(w, "<p>%d traveler(s) exploring <a href=\"map:%s\">%s</a>", req.Travelers(), esc(p.name), esc(p.name))
	if req.StartDate != "" && req.EndDate != "" {
		fmt.Fprintf(w, " from %s to %s", esc(req.StartDate), esc(req.EndDate))
	}
	fmt.Fprintf(w, " over %d day(s) at a %s pace and budget of about %s %.0f.</p>\n",
		req.Days(), b.Style, b.Currency, b.Total)
	if req.Purpose != "" {
		fmt.Fprintf(w, "<p>Trip purpose: %s.</p>\n", esc(req.Purpose))
	}
	if req.Preferences != "" {
		fmt.Fprintf(w, "<p>Tailored for: %s.</p>\n", esc(req.Preferences))
	}
	if !p.curated {
		fmt.Fprintf(w, "<p><em>General suggestions for %s; confirm local details before booking.</em></p>\n", esc(p.name))
	}
	fmt.Fprintf(w, "<img src=\"image:%s skyline\" alt=\"%s\">\n", esc(p.name), esc(p.name))
	fmt.Fprintf(w, "<p><a href=\"flights:%s\">Compare flights to %s</a></p>\n", esc(p.name), esc(p.name))
}

func (s *Synthesizer) budgetSection(w *strings.Builder, b models.BudgetBreakdown) {
	section(w, models.SectionBudget)
	w.WriteString("<table>\n<tr><th>Category</th><th>Per day</th><th>Total</th><th>Share</th></tr>\n")
	row := func(name string, c models.CategoryAmount) {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%s %.2f</td><td>%s %.0f</td><td>%.0f%%</td></tr>\n",
			name, b.Currency, c.PerDay, b.Currency, c.Total, c.Percent*100)
	}
	row("Stay", b.Stay)
	row("Food (per person)", b.Food)
	row("Activities", b.Activities)
	row("Transit", b.Transit)
	if b.Surcharge != nil {
		row("Equipment", b.Equipment)
	}
	fmt.Fprintf(w, "<tr><td><strong>Total</strong></td><td></td><td><strong>%s %.0f</strong></td><td>100%%</td></tr>\n</table>\n",
		b.Currency, b.Total)
	if b.Surcharge != nil {
		fmt.Fprintf(w, "<p>%s</p>\n", esc(b.Surcharge.Description))
	}
	if b.Derived {
		fmt.Fprintf(w, "<p><em>Estimated for a %s-tier destination; adjust to your own budget.</em></p>\n", b.CostTier)
	}
}

func (s *Synthesizer) lodging(w *strings.Builder, p profile, style models.Style) {
	section(w, models.SectionLodging)
	kind := map[models.Style]string{
		models.StyleBudget: "guesthouses and hostels",
		models.StyleMid:    "well-rated mid-range hotels",
		models.StyleLuxury: "five-star hotels",
	}[models.ParseStyle(string(style))]
	fmt.Fprintf(w, "<p>Look for %s in these areas:</p>\n<ul>\n", kind)
	for _, n := range p.neighborhoods {
		fmt.Fprintf(w, "<li><a href=\"hotels:%s\">%s</a></li>\n", esc(n), esc(n))
	}
	w.WriteString("</ul>\n")
}

func (s *Synthesizer) attractions(w *strings.Builder, p profile) {
	section(w, models.SectionAttractions)
	w.WriteString("<ul>\n")
	for _, h := range p.highlights {
		fmt.Fprintf(w, "<li><a href=\"map:%s\">%s</a> (<a href=\"activities:%s\">tickets</a>, <a href=\"reviews:%s\">reviews</a>)</li>\n",
			esc(h), esc(h), esc(h), esc(h))
	}
	w.WriteString("</ul>\n")
	if len(p.highlights) > 0 {
		fmt.Fprintf(w, "<img src=\"image:%s\" alt=\"%s\">\n", esc(p.highlights[0]), esc(p.highlights[0]))
	}
}

func (s *Synthesizer) dining(w *strings.Builder, p profile, dietary string) {
	section(w, models.SectionDining)
	w.WriteString("<ul>\n")
	for _, c := range p.cuisine {
		fmt.Fprintf(w, "<li>Try %s.</li>\n", esc(c))
	}
	w.WriteString("</ul>\n")
	if dietary != "" {
		fmt.Fprintf(w, "<p>Dietary notes (%s): ask for the allergen menu and book ahead so the kitchen can prepare.</p>\n", esc(dietary))
	}
}

func (s *Synthesizer) itinerary(w *strings.Builder, req models.TripRequest, p profile, max int) {
	section(w, models.SectionItinerary)
	dates := req.Dates(max)
	n := req.Days()
	if n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("Day %d", i+1)
		if i < len(dates) {
			title += ": " + dates[i].Format("Monday, Jan 2")
		}
		fmt.Fprintf(w, "<h3>%s</h3>\n<ul>\n", title)

		morning := pick(p.highlights, i*2)
		afternoon := pick(p.highlights, i*2+1)
		fmt.Fprintf(w, "<li>Morning: <a href=\"map:%s\">%s</a></li>\n", esc(morning), esc(morning))
		fmt.Fprintf(w, "<li>Afternoon: <a href=\"map:%s\">%s</a></li>\n", esc(afternoon), esc(afternoon))
		if c := pick(p.cuisine, i); c != "" {
			fmt.Fprintf(w, "<li>Evening: %s in %s</li>\n", esc(c), esc(pick(p.neighborhoods, i)))
		}
		w.WriteString("</ul>\n")
	}
}

func (s *Synthesizer) packing(w *strings.Builder, req models.TripRequest, p profile) {
	section(w, models.SectionPacking)
	items := []string{"Passport and printed bookings", "Universal power adapter", "Comfortable walking shoes", "Reusable water bottle"}

	if start, err := req.Start(); err == nil && p.curated {
		if high, low, rain, ok := p.dest.Seasonal(int(start.Month())); ok {
			switch {
			case high >= 27:
				items = append(items, "Sunscreen, hat and light breathable clothing")
			case low <= 3:
				items = append(items, "Warm coat, gloves and thermal layers")
			default:
				items = append(items, "Layers for mild days and cooler evenings")
			}
			if rain >= 10 {
				items = append(items, "Compact umbrella or rain jacket")
			}
		}
	}
	if rule, ok := s.catalog.EquipmentFor(req.Destination, req.Purpose); ok {
		items = append(items, fmt.Sprintf("Gear for %s, or budget for on-site rental", rule.Activity))
	}

	w.WriteString("<ul>\n")
	for _, it := range items {
		fmt.Fprintf(w, "<li>%s</li>\n", esc(it))
	}
	w.WriteString("</ul>\n")
}

func (s *Synthesizer) tips(w *strings.Builder, p profile) {
	section(w, models.SectionTips)
	w.WriteString("<ul>\n")
	fmt.Fprintf(w, "<li>Book timed-entry tickets for %s in advance.</li>\n", esc(pick(p.highlights, 0)))
	w.WriteString("<li>Carry a little cash for small vendors and tips.</li>\n")
	w.WriteString("<li>Start sightseeing early to beat the crowds.</li>\n")
	fmt.Fprintf(w, "<li>Arrange an <a href=\"transfers:%s airport\">airport transfer</a> for a late arrival.</li>\n", esc(p.name))
	w.WriteString("</ul>\n")
}

func (s *Synthesizer) apps(w *strings.Builder, p profile) {
	section(w, models.SectionApps)
	w.WriteString("<ul>\n")
	for _, a := range p.apps {
		fmt.Fprintf(w, "<li>%s</li>\n", esc(a))
	}
	w.WriteString("</ul>\n")
}

func section(w *strings.Builder, title string) {
	fmt.Fprintf(w, "<h2>%s</h2>\n", esc(title))
}

func pick(list []string, i int) string {
	if len(list) == 0 {
		return ""
	}
	return list[i%len(list)]
}

func esc(s string) string {
	return html.EscapeString(s)
}
