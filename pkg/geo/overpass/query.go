package overpass

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultServerTimeout is the [timeout:N] hint sent to the mirror, in seconds.
const DefaultServerTimeout = 15

// NearbyAmenities is the amenity allow-list used for generic discovery.
var NearbyAmenities = []string{"cafe", "restaurant", "fast_food", "bar", "pub", "fuel", "bank", "pharmacy"}

// TagFilter is a list of node selectors, e.g. `["shop"]` or `["amenity"~"cafe"]`.
// Each selector becomes one `node<selector>(around:...)` statement in the union.
type TagFilter []string

// NearbyFilter selects every shop plus the amenity allow-list.
func NearbyFilter() TagFilter {
	return TagFilter{
		`["shop"]`,
		fmt.Sprintf(`["amenity"~"%s"]`, strings.Join(NearbyAmenities, "|")),
	}
}

// KeywordFilter matches shop, amenity or name against the keyword,
// case-insensitively and as a substring.
func KeywordFilter(keyword string) TagFilter {
	kw := escapeValue(keyword)
	return TagFilter{
		fmt.Sprintf(`["shop"~"%s",i]`, kw),
		fmt.Sprintf(`["amenity"~"%s",i]`, kw),
		fmt.Sprintf(`["name"~"%s",i]`, kw),
	}
}

// escapeValue makes the keyword a literal regex inside a quoted QL string.
func escapeValue(s string) string {
	s = regexp.QuoteMeta(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Query is the structured geo query sent to a mirror.
type Query struct {
	Lat           float64
	Lng           float64
	RadiusM       int
	Filter        TagFilter
	Limit         int // 0 means no explicit cap
	ServerTimeout int
}

// Build renders the query as Overpass QL.
func (q Query) Build() string {
	timeout := q.ServerTimeout
	if timeout <= 0 {
		timeout = DefaultServerTimeout
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[out:json][timeout:%d];\n(\n", timeout))
	for _, sel := range q.Filter {
		b.WriteString(fmt.Sprintf("  node%s(around:%d,%f,%f);\n", sel, q.RadiusM, q.Lat, q.Lng))
	}
	b.WriteString(");\n")
	if q.Limit > 0 {
		b.WriteString(fmt.Sprintf("out %d;", q.Limit))
	} else {
		b.WriteString("out;")
	}
	return b.String()
}
