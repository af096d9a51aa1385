// internal/models/sections.go
package models

// Canonical section headings.
const (
	SectionOverview    = "Trip Overview"
	SectionBudget      = "Budget Breakdown"
	SectionTransport   = "Getting Around"
	SectionLodging     = "Where to Stay"
	SectionAttractions = "Must-See Attractions"
	SectionDining      = "Food & Dining"
	SectionItinerary   = "Daily Itinerary"
	SectionPacking     = "Packing List"
	SectionTips        = "Travel Tips"
	SectionApps        = "Useful Apps"
	SectionEmergency   = "Emergency Information"
)

// CanonicalSections is the fixed section order of a complete document.
var CanonicalSections = []string{
	SectionOverview,
	SectionBudget,
	SectionTransport,
	SectionLodging,
	SectionAttractions,
	SectionDining,
	SectionItinerary,
	SectionPacking,
	SectionTips,
	SectionApps,
	SectionEmergency,
}
