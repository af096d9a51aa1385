// internal/planner/destinations/catalog.go
package destinations

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"itinerary-workers/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed data/destinations.yaml
var defaultData []byte

type EquipmentRule struct {
	Activity string   `yaml:"activity"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Rate     float64  `yaml:"rate"`
}

type Holiday struct {
	Name     string   `yaml:"name"`
	Dates    []string `yaml:"dates"`
	Period   string   `yaml:"period"`
	Closures string   `yaml:"closures"`
	Crowds   string   `yaml:"crowds"`
	Events   []string `yaml:"events"`
}

type Event struct {
	Name     string `yaml:"name"`
	Period   string `yaml:"period"`
	Location string `yaml:"location"`
	Impact   string `yaml:"impact"`
	Crowds   string `yaml:"crowds"`
}

type Country struct {
	Code     string    `yaml:"-"`
	Name     string    `yaml:"name"`
	Aliases  []string  `yaml:"aliases"`
	Holidays []Holiday `yaml:"holidays"`
	Events   []Event   `yaml:"events"`
}

type Climate struct {
	High     []float64 `yaml:"high"`
	Low      []float64 `yaml:"low"`
	RainDays []int     `yaml:"rain_days"`
}

// Destination is the curated blurb set for one well-known destination.
type Destination struct {
	Key           string   `yaml:"key"`
	Name          string   `yaml:"name"`
	Country       string   `yaml:"country"`
	Match         []string `yaml:"match"`
	Lat           float64  `yaml:"lat"`
	Lon           float64  `yaml:"lon"`
	Highlights    []string `yaml:"highlights"`
	Cuisine       []string `yaml:"cuisine"`
	Neighborhoods []string `yaml:"neighborhoods"`
	Transport     string   `yaml:"transport"`
	Apps          []string `yaml:"apps"`
	Emergency     string   `yaml:"emergency"`
	Climate       Climate  `yaml:"climate"`
}

// Seasonal returns the typical high, low and rainy-day count for a month (1-12).
func (d Destination) Seasonal(month int) (high, low float64, rainDays int, ok bool) {
	i := month - 1
	if i < 0 || i >= 12 || len(d.Climate.High) != 12 || len(d.Climate.Low) != 12 {
		return 0, 0, 0, false
	}
	if len(d.Climate.RainDays) == 12 {
		rainDays = d.Climate.RainDays[i]
	}
	return d.Climate.High[i], d.Climate.Low[i], rainDays, true
}

type CrowdProfile struct {
	Label   string   `yaml:"label"`
	Peak    []string `yaml:"peak"`
	OffPeak []string `yaml:"off_peak"`
	Optimal []string `yaml:"optimal"`
}

type alias struct {
	text  string
	value string
}

// Catalog is the parsed destination data asset. It is immutable after Parse.
type Catalog struct {
	Version      string                  `yaml:"version"`
	CostTiers    map[string][]string     `yaml:"cost_tiers"`
	Equipment    []EquipmentRule         `yaml:"equipment"`
	Countries    map[string]Country      `yaml:"countries"`
	Destinations []Destination           `yaml:"destinations"`
	CrowdWindows map[string]CrowdProfile `yaml:"crowd_windows"`

	tierIndex    []alias
	countryIndex []alias
	destIndex    []alias
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog, parsed on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultData)
		if err != nil {
			panic(fmt.Sprintf("destinations: embedded data is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes a catalog document and builds its alias indexes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse destination data: %w", err)
	}

	for tier, names := range c.CostTiers {
		switch models.CostTier(tier) {
		case models.CostTierVeryHigh, models.CostTierHigh, models.CostTierModerate, models.CostTierLow:
		default:
			return nil, fmt.Errorf("unknown cost tier %q", tier)
		}
		for _, n := range names {
			c.tierIndex = append(c.tierIndex, alias{text: strings.ToLower(n), value: tier})
		}
	}

	for code, country := range c.Countries {
		country.Code = code
		c.Countries[code] = country
		for _, a := range country.Aliases {
			c.countryIndex = append(c.countryIndex, alias{text: strings.ToLower(a), value: code})
		}
	}

	for i, d := range c.Destinations {
		if d.Key == "" {
			return nil, fmt.Errorf("destination %d has no key", i)
		}
		if _, ok := c.Countries[d.Country]; d.Country != "" && !ok {
			return nil, fmt.Errorf("destination %s references unknown country %s", d.Key, d.Country)
		}
		for _, m := range d.Match {
			c.destIndex = append(c.destIndex, alias{text: strings.ToLower(m), value: d.Key})
		}
	}

	sortAliases(c.tierIndex)
	sortAliases(c.countryIndex)
	sortAliases(c.destIndex)
	return &c, nil
}

// sortAliases orders longest alias first so "new york" wins over "york".
func sortAliases(a []alias) {
	sort.SliceStable(a, func(i, j int) bool {
		if len(a[i].text) != len(a[j].text) {
			return len(a[i].text) > len(a[j].text)
		}
		return a[i].text < a[j].text
	})
}

func lookup(index []alias, text string) (string, bool) {
	needle := strings.ToLower(text)
	if strings.TrimSpace(needle) == "" {
		return "", false
	}
	for _, a := range index {
		if strings.Contains(needle, a.text) {
			return a.value, true
		}
	}
	return "", false
}

// CostTier classifies a destination by name; unmatched destinations are moderate.
func (c *Catalog) CostTier(destination string) models.CostTier {
	if tier, ok := lookup(c.tierIndex, destination); ok {
		return models.CostTier(tier)
	}
	return models.CostTierModerate
}

// CountryFor resolves a destination string to a country code.
func (c *Catalog) CountryFor(destination string) (string, bool) {
	return lookup(c.countryIndex, destination)
}

func (c *Catalog) Country(code string) (Country, bool) {
	country, ok := c.Countries[code]
	return country, ok
}

// Destination returns the curated entry for a destination string.
func (c *Catalog) Destination(destination string) (Destination, bool) {
	key, ok := lookup(c.destIndex, destination)
	if !ok {
		return Destination{}, false
	}
	for _, d := range c.Destinations {
		if d.Key == key {
			return d, true
		}
	}
	return Destination{}, false
}

// EquipmentFor returns the first equipment rule whose keyword starts a word in any of texts.
func (c *Catalog) EquipmentFor(texts ...string) (EquipmentRule, bool) {
	var words []string
	for _, t := range texts {
		words = append(words, strings.Fields(strings.ToLower(t))...)
	}
	joined := " " + strings.Join(words, " ")

	for _, rule := range c.Equipment {
		for _, kw := range rule.Keywords {
			if strings.Contains(joined, " "+strings.ToLower(kw)) {
				return rule, true
			}
		}
	}
	return EquipmentRule{}, false
}

func (c *Catalog) CrowdProfile(category string) (CrowdProfile, bool) {
	p, ok := c.CrowdWindows[strings.ToLower(category)]
	return p, ok
}
