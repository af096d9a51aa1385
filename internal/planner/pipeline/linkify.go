// internal/planner/pipeline/linkify.go
package pipeline

import (
	"html"
	"regexp"

	"itinerary-workers/internal/planner/links"
)

var (
	hrefTokenDouble = regexp.MustCompile(`href\s*=\s*"([A-Za-z]+):([^"]*)"`)
	hrefTokenSingle = regexp.MustCompile(`href\s*=\s*'([A-Za-z]+):([^']*)'`)
)

// Linkify rewrites href="<token>:<query>" targets into real URLs. Unknown tokens and
// ordinary schemes such as https or mailto are left untouched.
func Linkify(doc string, factory *links.Factory) string {
	doc = linkifyWith(hrefTokenDouble, `"`, doc, factory)
	return linkifyWith(hrefTokenSingle, `'`, doc, factory)
}

func linkifyWith(re *regexp.Regexp, quote, doc string, factory *links.Factory) string {
	if !re.MatchString(doc) {
		return doc
	}
	return re.ReplaceAllStringFunc(doc, func(match string) string {
		sub := re.FindStringSubmatch(match)
		target, ok := factory.Resolve(sub[1], html.UnescapeString(sub[2]))
		if !ok {
			return match
		}
		return "href=" + quote + html.EscapeString(target) + quote
	})
}
