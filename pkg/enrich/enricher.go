package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/jsonx"
	"store-locator-be/pkg/llm"
	"store-locator-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const module = "ENRICH"

// Outcome reports what Enrich did with the input.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeEnriched Outcome = "enriched"
	OutcomeFailed   Outcome = "failed"
)

const (
	minRating      = 1.0
	maxRating      = 5.0
	maxReviewTexts = 2
)

// Enricher replaces synthesized metadata with provider-generated content.
type Enricher struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

// NewEnricher returns an enricher; a nil provider makes every call a no-op.
func NewEnricher(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Enricher {
	return &Enricher{provider: provider, timeout: timeout, logger: log}
}

// Enabled reports whether a provider is configured.
func (e *Enricher) Enabled() bool {
	return e != nil && e.provider != nil
}

type projection struct {
	ID       string `json:"id"`
	Name     string `json:"n"`
	Category string `json:"cat"`
}

type patch struct {
	Rating       *float64 `json:"r"`
	ReviewsCount *float64 `json:"rv"`
	OpenHour     string   `json:"o"`
	Products     []string `json:"p"`
	Description  string   `json:"d"`
	ReviewList   []string `json:"rv_txt"`
}

// Enrich returns a new slice where the first limit stores carry provider
// content. Count, order and ids never change and the input is never mutated.
// On any failure the input is returned as is.
func (e *Enricher) Enrich(ctx context.Context, stores []store.Store, limit int) ([]store.Store, Outcome) {
	if !e.Enabled() || len(stores) == 0 || limit <= 0 {
		return stores, OutcomeSkipped
	}
	if limit > len(stores) {
		limit = len(stores)
	}

	ctx, span := otel.Tracer("enrich").Start(ctx, "enrich.stores")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(stores[:limit])
	if err != nil {
		e.logger.Error(module, "Failed to build enrichment prompt", map[string]interface{}{"error": err.Error()})
		return stores, OutcomeFailed
	}

	raw, err := e.provider.Generate(ctx, prompt, llm.WithJSON(), llm.WithTemperature(0.7))
	if err != nil {
		e.logger.Warn(module, "Provider call failed, keeping synthesized data", map[string]interface{}{"error": err.Error()})
		return stores, OutcomeFailed
	}

	patches, err := parse(raw)
	if err != nil {
		e.logger.Warn(module, "Provider output unusable, keeping synthesized data", map[string]interface{}{"error": err.Error()})
		return stores, OutcomeFailed
	}

	out := store.CloneAll(stores)
	applied := 0
	for i := 0; i < limit; i++ {
		p, ok := patches[out[i].ID]
		if !ok {
			continue
		}
		merge(&out[i], p)
		applied++
	}

	e.logger.Info(module, "Stores enriched", map[string]interface{}{"requested": limit, "applied": applied})
	span.SetAttributes(attribute.Int("applied", applied))
	return out, OutcomeEnriched
}

func buildPrompt(stores []store.Store) (string, error) {
	items := make([]projection, len(stores))
	for i, s := range stores {
		items[i] = projection{ID: s.ID, Name: s.Name, Category: s.CategoryKey}
	}
	input, err := json.Marshal(items)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Role: Vietnam local guide. Generate JSON.\n")
	b.WriteString("Input: ")
	b.Write(input)
	b.WriteString("\n\nSTRICT RULES:\n")
	b.WriteString("1. IF cat='fuel' -> reviews about gasoline, products are fuel types.\n")
	b.WriteString("2. IF cat='pharmacy' -> reviews about medicine.\n")
	b.WriteString("3. Write products, description and reviews in Vietnamese.\n\n")
	b.WriteString("Output: one JSON object keyed by input id. Each value has fields:\n")
	b.WriteString("r (rating 1.0-5.0), rv (reviews count), o (open hours), p (list of products), d (description), rv_txt (list of 2 reviews).\n")
	b.WriteString("JSON only.")
	return b.String(), nil
}

func parse(raw string) (map[string]patch, error) {
	obj, err := jsonx.Extract(raw)
	if err != nil {
		return nil, err
	}
	patches := map[string]patch{}
	if err := json.Unmarshal([]byte(obj), &patches); err != nil {
		return nil, fmt.Errorf("decode enrichment: %w", err)
	}
	return patches, nil
}

// merge overlays p on s field by field; absent or empty fields keep the
// synthesized value.
func merge(s *store.Store, p patch) {
	if p.Rating != nil && !math.IsNaN(*p.Rating) && !math.IsInf(*p.Rating, 0) {
		s.Rating = clampRating(*p.Rating)
	}
	if p.ReviewsCount != nil && !math.IsNaN(*p.ReviewsCount) && !math.IsInf(*p.ReviewsCount, 0) {
		n := int(math.Round(*p.ReviewsCount))
		if n < 0 {
			n = 0
		}
		s.ReviewsCount = n
	}
	if o := strings.TrimSpace(p.OpenHour); o != "" {
		s.OpenHour = o
	}
	if products := nonEmpty(p.Products); len(products) > 0 {
		s.Products = products
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		s.Description = d
	}
	if reviews := nonEmpty(p.ReviewList); len(reviews) > 0 {
		if len(reviews) > maxReviewTexts {
			reviews = reviews[:maxReviewTexts]
		}
		s.ReviewList = reviews
	}
}

func clampRating(r float64) float64 {
	r = math.Max(minRating, math.Min(maxRating, r))
	return math.Round(r*10) / 10
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
