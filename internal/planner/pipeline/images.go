// internal/planner/pipeline/images.go
package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"itinerary-workers/internal/planner/links"
)

var (
	imgTag         = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	imgTokenSrc    = regexp.MustCompile(`src\s*=\s*"image:([^"]*)"`)
	imgPlaceholder = regexp.MustCompile(`\{\{\s*image:([^}]*)\}\}`)
)

// ResolveImages turns <img src="image:q"> and {{image:q}} placeholders into image URLs,
// or strips them when images are disabled.
func ResolveImages(doc string, factory *links.Factory, disabled bool) string {
	if imgTag.MatchString(doc) {
		doc = imgTag.ReplaceAllStringFunc(doc, func(tag string) string {
			sub := imgTokenSrc.FindStringSubmatch(tag)
			if sub == nil {
				return tag
			}
			if disabled {
				return ""
			}
			src := factory.Images(html.UnescapeString(sub[1]))
			return strings.Replace(tag, sub[0], `src="`+html.EscapeString(src)+`"`, 1)
		})
	}

	if imgPlaceholder.MatchString(doc) {
		doc = imgPlaceholder.ReplaceAllStringFunc(doc, func(match string) string {
			if disabled {
				return ""
			}
			q := strings.TrimSpace(html.UnescapeString(imgPlaceholder.FindStringSubmatch(match)[1]))
			return fmt.Sprintf(`<img class="trip-image" src="%s" alt="%s" loading="lazy">`,
				html.EscapeString(factory.Images(q)), html.EscapeString(q))
		})
	}
	return doc
}
