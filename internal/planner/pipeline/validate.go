// internal/planner/pipeline/validate.go
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrGenericContent marks a document that reads like a template rather than a plan.
var ErrGenericContent = errors.New("generic content detected")

// DefaultDenylist holds phrases that only appear in placeholder or refusal output.
// Matching is substring based and best effort.
var DefaultDenylist = []string{
	"lorem ipsum",
	"insert destination",
	"[destination]",
	"[city name]",
	"{{destination}}",
	"your destination here",
	"as an ai language model",
	"as an ai assistant",
	"i cannot provide",
	"i'm unable to create",
	"placeholder text",
	"sample itinerary for",
}

// DetectGeneric scans the visible text of doc for denylisted phrases, case-insensitively.
func DetectGeneric(doc string, denylist []string) error {
	if len(denylist) == 0 {
		denylist = DefaultDenylist
	}
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	gq.Find("script, style").Remove()
	text := strings.ToLower(gq.Text())

	for _, phrase := range denylist {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p != "" && strings.Contains(text, p) {
			return fmt.Errorf("%w: matched %q", ErrGenericContent, phrase)
		}
	}
	return nil
}
