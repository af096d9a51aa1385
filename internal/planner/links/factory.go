// internal/planner/links/factory.go
package links

import (
	"net/url"
	"strings"
)

// DefaultPartnerID tags activity links when no partner id is configured.
const DefaultPartnerID = "ITINWORKERS"

// maxWaypoints is the Google Maps directions limit for intermediate stops.
const maxWaypoints = 9

// Kind is a link category addressed by document tokens.
type Kind string

const (
	KindMap        Kind = "map"
	KindHotels     Kind = "hotels"
	KindActivities Kind = "activities"
	KindCars       Kind = "cars"
	KindInsurance  Kind = "insurance"
	KindReviews    Kind = "reviews"
	KindFlights    Kind = "flights"
	KindImages     Kind = "images"
	KindTransfers  Kind = "transfers"
)

var kindAliases = map[string]Kind{
	"map":        KindMap,
	"maps":       KindMap,
	"hotel":      KindHotels,
	"hotels":     KindHotels,
	"activity":   KindActivities,
	"activities": KindActivities,
	"car":        KindCars,
	"cars":       KindCars,
	"insurance":  KindInsurance,
	"review":     KindReviews,
	"reviews":    KindReviews,
	"flight":     KindFlights,
	"flights":    KindFlights,
	"image":      KindImages,
	"images":     KindImages,
	"transfer":   KindTransfers,
	"transfers":  KindTransfers,
}

// ParseKind maps a token name, singular or plural, to its Kind.
func ParseKind(token string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(token))]
	return k, ok
}

// Factory builds outbound URLs scoped to one destination. It holds no mutable state.
type Factory struct {
	destination string
	partnerID   string
}

type Option func(*Factory)

func WithPartnerID(id string) Option {
	return func(f *Factory) {
		if id != "" {
			f.partnerID = id
		}
	}
}

// For returns a factory for destination.
func For(destination string, opts ...Option) *Factory {
	f := &Factory{destination: strings.TrimSpace(destination), partnerID: DefaultPartnerID}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) Destination() string { return f.destination }

func (f *Factory) PartnerID() string { return f.partnerID }

// scoped appends the destination to q unless q already names it.
func (f *Factory) scoped(q string) string {
	q = strings.TrimSpace(q)
	if f.destination == "" {
		return q
	}
	if q == "" {
		return f.destination
	}
	if strings.Contains(strings.ToLower(q), strings.ToLower(f.destination)) {
		return q
	}
	return q + ", " + f.destination
}

func (f *Factory) Maps(q string) string {
	v := url.Values{}
	v.Set("api", "1")
	v.Set("query", f.scoped(q))
	return "https://www.google.com/maps/search/?" + v.Encode()
}

func (f *Factory) Hotels(q string) string {
	v := url.Values{}
	v.Set("ss", f.scoped(q))
	return "https://www.booking.com/searchresults.html?" + v.Encode()
}

func (f *Factory) Activities(q string) string {
	v := url.Values{}
	v.Set("q", f.scoped(q))
	v.Set("partner_id", f.partnerID)
	return "https://www.getyourguide.com/s/?" + v.Encode()
}

func (f *Factory) Cars(q string) string {
	v := url.Values{}
	v.Set("location", f.scoped(q))
	return "https://www.rentalcars.com/search-results?" + v.Encode()
}

func (f *Factory) Insurance(q string) string {
	v := url.Values{}
	v.Set("destination", f.scoped(q))
	return "https://www.worldnomads.com/travel-insurance?" + v.Encode()
}

func (f *Factory) Reviews(q string) string {
	v := url.Values{}
	v.Set("q", f.scoped(q))
	return "https://www.tripadvisor.com/Search?" + v.Encode()
}

func (f *Factory) Flights(q string) string {
	target := strings.TrimSpace(q)
	if target == "" {
		target = f.destination
	}
	v := url.Values{}
	v.Set("q", "Flights to "+target)
	return "https://www.google.com/travel/flights?" + v.Encode()
}

// Images returns a thumbnail search URL; the result is an image, not a page.
func (f *Factory) Images(q string) string {
	v := url.Values{}
	v.Set("q", f.scoped(q))
	v.Set("w", "800")
	v.Set("h", "500")
	v.Set("c", "7")
	return "https://tse1.mm.bing.net/th?" + v.Encode()
}

func (f *Factory) Transfers(q string) string {
	v := url.Values{}
	v.Set("q", f.scoped(q))
	return "https://www.welcomepickups.com/search/?" + v.Encode()
}

// Directions builds a multi-stop route through queries in order.
func (f *Factory) Directions(queries []string) string {
	stops := f.stops(queries)
	v := url.Values{}
	v.Set("api", "1")
	switch len(stops) {
	case 0:
		v.Set("destination", f.destination)
	case 1:
		v.Set("destination", stops[0])
	default:
		v.Set("origin", stops[0])
		v.Set("destination", stops[len(stops)-1])
		mid := stops[1 : len(stops)-1]
		if len(mid) > maxWaypoints {
			mid = mid[:maxWaypoints]
		}
		if len(mid) > 0 {
			v.Set("waypoints", strings.Join(mid, "|"))
		}
	}
	return "https://www.google.com/maps/dir/?" + v.Encode()
}

// DirectionStops is how many of queries the Directions route actually visits.
func (f *Factory) DirectionStops(queries []string) int {
	n := len(f.stops(queries))
	if n > maxWaypoints+2 {
		n = maxWaypoints + 2
	}
	return n
}

func (f *Factory) stops(queries []string) []string {
	stops := make([]string, 0, len(queries))
	for _, q := range queries {
		if strings.TrimSpace(q) != "" {
			stops = append(stops, f.scoped(q))
		}
	}
	return stops
}

// Resolve builds the URL for a document token; unknown tokens report false.
func (f *Factory) Resolve(token, query string) (string, bool) {
	kind, ok := ParseKind(token)
	if !ok {
		return "", false
	}
	switch kind {
	case KindMap:
		return f.Maps(query), true
	case KindHotels:
		return f.Hotels(query), true
	case KindActivities:
		return f.Activities(query), true
	case KindCars:
		return f.Cars(query), true
	case KindInsurance:
		return f.Insurance(query), true
	case KindReviews:
		return f.Reviews(query), true
	case KindFlights:
		return f.Flights(query), true
	case KindImages:
		return f.Images(query), true
	case KindTransfers:
		return f.Transfers(query), true
	}
	return "", false
}
