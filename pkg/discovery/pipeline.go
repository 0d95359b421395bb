package discovery

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/enrich"
	"store-locator-be/pkg/geo"
	"store-locator-be/pkg/geo/overpass"
	"store-locator-be/pkg/metadata"
	"store-locator-be/pkg/store"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const module = "DISCOVERY"

// Logged when a fetch succeeds but every element is dropped by transform.
const reasonNoUsableElements = "no_usable_elements"

const (
	AddressPlaceholder = "Đang cập nhật địa chỉ"
	UnknownCategory    = "unknown"
)

// GeoSource fetches raw elements for a query.
type GeoSource interface {
	Fetch(ctx context.Context, q overpass.Query) overpass.FetchResult
}

// StoreEnricher replaces synthesized fields of the first limit stores.
type StoreEnricher interface {
	Enrich(ctx context.Context, stores []store.Store, limit int) ([]store.Store, enrich.Outcome)
}

// Options tunes the pipeline; zero values fall back to defaults.
type Options struct {
	Radius        int
	MaxResults    int
	KeywordRadius int
	KeywordLimit  int
	EnrichLimit   int
	CacheTTL      time.Duration
}

func (o Options) withDefaults() Options {
	if o.Radius <= 0 {
		o.Radius = 1500
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 12
	}
	if o.KeywordRadius <= 0 {
		o.KeywordRadius = 3000
	}
	if o.KeywordLimit <= 0 {
		o.KeywordLimit = 20
	}
	if o.EnrichLimit <= 0 {
		o.EnrichLimit = 8
	}
	return o
}

// Pipeline turns a coordinate into a sorted, fully populated store list.
type Pipeline struct {
	source      GeoSource
	synthesizer *metadata.Synthesizer
	enricher    StoreEnricher
	cache       *cache.Cache
	opts        Options
	logger      logger.ILogger
}

// NewPipeline wires the pipeline. enricher may be nil. A zero CacheTTL disables
// the nearby result cache.
func NewPipeline(
	source GeoSource,
	synthesizer *metadata.Synthesizer,
	enricher StoreEnricher,
	opts Options,
	log logger.ILogger,
) *Pipeline {
	p := &Pipeline{
		source:      source,
		synthesizer: synthesizer,
		enricher:    enricher,
		opts:        opts.withDefaults(),
		logger:      log,
	}
	if opts.CacheTTL > 0 {
		p.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return p
}

// Options returns the effective options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// DiscoverNearby returns stores around the coordinate. It never returns an
// empty list: a failed fetch or one without usable elements yields the fixed
// mock set.
func (p *Pipeline) DiscoverNearby(ctx context.Context, lat, lng float64, radius, maxResults int) []store.Store {
	ctx, span := otel.Tracer("discovery").Start(ctx, "discovery.nearby")
	defer span.End()

	if radius <= 0 {
		radius = p.opts.Radius
	}
	if maxResults <= 0 {
		maxResults = p.opts.MaxResults
	}

	if !geo.ValidCoordinate(lat, lng) {
		p.logger.Warn(module, "Invalid coordinate, serving mock data", map[string]interface{}{"lat": lat, "lng": lng})
		return MockStores(p.synthesizer, lat, lng)
	}

	cacheKey := fmt.Sprintf("nearby:%.4f:%.4f:%d:%d", lat, lng, radius, maxResults)
	if p.cache != nil {
		if cached, found := p.cache.Get(cacheKey); found {
			if stores, ok := cached.([]store.Store); ok {
				p.logger.Debug(module, "Serving nearby stores from cache", map[string]interface{}{"key": cacheKey})
				return store.CloneAll(stores)
			}
		}
	}

	p.logger.Info(module, "Discovering nearby stores", map[string]interface{}{
		"lat": lat, "lng": lng, "radius": radius, "max_results": maxResults,
	})

	res := p.source.Fetch(ctx, overpass.Query{
		Lat:     lat,
		Lng:     lng,
		RadiusM: radius,
		Filter:  overpass.NearbyFilter(),
		Limit:   maxResults,
	})
	if !res.OK() {
		p.logger.Warn(module, "Geo fetch failed, serving mock data", map[string]interface{}{"reason": string(res.Reason)})
		span.SetAttributes(attribute.String("fallback", string(res.Reason)))
		return MockStores(p.synthesizer, lat, lng)
	}

	stores := p.transform(res.Elements, lat, lng, "")
	p.logger.Info(module, "Transformed raw elements", map[string]interface{}{
		"raw": len(res.Elements), "kept": len(stores),
	})
	if len(stores) == 0 {
		p.logger.Warn(module, "No usable elements, serving mock data", map[string]interface{}{"reason": reasonNoUsableElements})
		span.SetAttributes(attribute.String("fallback", reasonNoUsableElements))
		return MockStores(p.synthesizer, lat, lng)
	}
	stores = p.enrich(ctx, stores)
	span.SetAttributes(attribute.Int("stores", len(stores)))

	if p.cache != nil {
		p.cache.Set(cacheKey, store.CloneAll(stores), cache.DefaultExpiration)
	}
	return stores
}

// SearchByKeyword runs a targeted search. The keyword becomes every store's
// category key so synthesized metadata follows the keyword. Unlike
// DiscoverNearby, failure yields an empty list so callers can keep prior results.
func (p *Pipeline) SearchByKeyword(ctx context.Context, lat, lng float64, keyword string, radius int) []store.Store {
	ctx, span := otel.Tracer("discovery").Start(ctx, "discovery.keyword")
	defer span.End()

	keyword = strings.TrimSpace(keyword)
	if keyword == "" || !geo.ValidCoordinate(lat, lng) {
		p.logger.Warn(module, "Keyword search skipped", map[string]interface{}{"keyword": keyword, "lat": lat, "lng": lng})
		return []store.Store{}
	}
	if radius <= 0 {
		radius = p.opts.KeywordRadius
	}
	span.SetAttributes(attribute.String("keyword", keyword))

	p.logger.Info(module, "Searching by keyword", map[string]interface{}{"keyword": keyword, "radius": radius})

	res := p.source.Fetch(ctx, overpass.Query{
		Lat:     lat,
		Lng:     lng,
		RadiusM: radius,
		Filter:  overpass.KeywordFilter(keyword),
		Limit:   p.opts.KeywordLimit,
	})
	if !res.OK() {
		p.logger.Warn(module, "Keyword fetch failed", map[string]interface{}{"keyword": keyword, "reason": string(res.Reason)})
		return []store.Store{}
	}

	stores := p.transform(res.Elements, lat, lng, keyword)
	return p.enrich(ctx, stores)
}

// transform filters raw elements, builds stores and sorts them by distance.
func (p *Pipeline) transform(elements []overpass.Element, lat, lng float64, forcedCategory string) []store.Store {
	stores := make([]store.Store, 0, len(elements))
	seen := make(map[string]bool, len(elements))

	for _, el := range elements {
		name := el.Tag("name")
		if el.Lat == nil || el.Lon == nil || name == "" {
			continue
		}

		id := strconv.FormatInt(el.ID, 10)
		if seen[id] {
			continue
		}
		seen[id] = true

		category := forcedCategory
		if category == "" {
			category = firstNonEmpty(el.Tag("shop"), el.Tag("amenity"), UnknownCategory)
		}

		s := store.Store{
			ID:          id,
			Name:        name,
			CategoryKey: category,
			Lat:         *el.Lat,
			Lng:         *el.Lon,
			DistanceKm:  geo.Distance(lat, lng, *el.Lat, *el.Lon),
			Address:     address(el),
		}
		s.Apply(p.synthesizer.Synthesize(name, category))
		stores = append(stores, s)
	}

	sort.SliceStable(stores, func(i, j int) bool {
		return stores[i].DistanceKm < stores[j].DistanceKm
	})
	return stores
}

func (p *Pipeline) enrich(ctx context.Context, stores []store.Store) []store.Store {
	if p.enricher == nil || len(stores) == 0 {
		return stores
	}
	enriched, outcome := p.enricher.Enrich(ctx, stores, p.opts.EnrichLimit)
	p.logger.Debug(module, "Enrichment finished", map[string]interface{}{"outcome": string(outcome)})
	// Enrichment must never change count or order; guard against a misbehaving enricher.
	if len(enriched) != len(stores) {
		p.logger.Error(module, "Enricher changed store count, discarding", map[string]interface{}{
			"before": len(stores), "after": len(enriched),
		})
		return stores
	}
	return enriched
}

func address(el overpass.Element) string {
	street := el.Tag("addr:street")
	if street == "" {
		return AddressPlaceholder
	}
	if number := el.Tag("addr:housenumber"); number != "" {
		return number + " " + street
	}
	return street
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
