package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"store-locator-be/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const module = "OVERPASS"

// FailureReason explains why a fetch produced no elements. Empty means success.
type FailureReason string

const (
	ReasonNone        FailureReason = ""
	ReasonTimeout     FailureReason = "timeout"
	ReasonHTTPStatus  FailureReason = "http_status"
	ReasonContentType FailureReason = "content_type"
	ReasonTransport   FailureReason = "transport"
	ReasonDecode      FailureReason = "decode"
	ReasonNoElements  FailureReason = "no_elements"
	ReasonAllFailed   FailureReason = "all_failed"
	ReasonNoMirrors   FailureReason = "no_mirrors"
)

// Element is one raw upstream node.
type Element struct {
	ID   int64             `json:"id"`
	Type string            `json:"type"`
	Lat  *float64          `json:"lat"`
	Lon  *float64          `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Tag returns a tag value or "".
func (e Element) Tag(key string) string {
	if e.Tags == nil {
		return ""
	}
	return strings.TrimSpace(e.Tags[key])
}

// FetchResult is the typed outcome of a fetch. It is never an error: callers
// branch on OK() and log Reason.
type FetchResult struct {
	Elements []Element
	Mirror   string
	Reason   FailureReason
}

// OK reports whether a mirror answered with an elements list.
func (r FetchResult) OK() bool {
	return r.Reason == ReasonNone
}

type response struct {
	Elements *[]Element `json:"elements"`
}

// Fetcher queries an ordered list of interchangeable mirrors and returns the
// first usable answer. Mirrors are tried sequentially, never in parallel.
type Fetcher struct {
	mirrors []string
	timeout time.Duration
	client  *http.Client
	logger  logger.ILogger
}

func NewFetcher(mirrors []string, timeout time.Duration, log logger.ILogger) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		mirrors: append([]string(nil), mirrors...),
		timeout: timeout,
		client:  &http.Client{},
		logger:  log,
	}
}

// WithHTTPClient swaps the transport client (tests, proxies).
func (f *Fetcher) WithHTTPClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// Fetch runs the query against each mirror in order until one succeeds.
func (f *Fetcher) Fetch(ctx context.Context, q Query) FetchResult {
	if len(f.mirrors) == 0 {
		f.logger.Error(module, "No mirrors configured", nil)
		return FetchResult{Reason: ReasonNoMirrors}
	}

	body := q.Build()
	for _, mirror := range f.mirrors {
		f.logger.Debug(module, "Trying mirror", map[string]interface{}{"mirror": mirror})

		res, err := f.attempt(ctx, mirror, body)
		if err == nil {
			f.logger.Info(module, "Mirror answered", map[string]interface{}{
				"mirror":   mirror,
				"elements": len(res.Elements),
				"reason":   string(res.Reason),
			})
			return res
		}

		var ae *attemptError
		reason := ReasonTransport
		if errors.As(err, &ae) {
			reason = ae.reason
		}
		f.logger.Warn(module, "Mirror failed", map[string]interface{}{
			"mirror": mirror,
			"reason": string(reason),
			"error":  err.Error(),
		})

		if ctx.Err() != nil {
			// Caller gave up; no point trying the rest.
			break
		}
	}

	f.logger.Error(module, "All mirrors failed", map[string]interface{}{"mirrors": len(f.mirrors)})
	return FetchResult{Reason: ReasonAllFailed}
}

type attemptError struct {
	reason FailureReason
	err    error
}

func (e *attemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.reason, e.err)
}

func (e *attemptError) Unwrap() error {
	return e.err
}

func (f *Fetcher) attempt(ctx context.Context, mirror, query string) (FetchResult, error) {
	ctx, span := otel.Tracer("overpass").Start(ctx, "overpass.attempt")
	defer span.End()
	span.SetAttributes(attribute.String("mirror", mirror))

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mirror+"?"+params.Encode(), nil)
	if err != nil {
		return FetchResult{}, &attemptError{reason: ReasonTransport, err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := f.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if isTimeout(err) {
			return FetchResult{}, &attemptError{reason: ReasonTimeout, err: err}
		}
		return FetchResult{}, &attemptError{reason: ReasonTransport, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		span.SetStatus(codes.Error, "bad status")
		return FetchResult{}, &attemptError{reason: ReasonHTTPStatus, err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	ctype := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(ctype, "json") {
		span.SetStatus(codes.Error, "not json")
		return FetchResult{}, &attemptError{reason: ReasonContentType, err: fmt.Errorf("content type %q", ctype)}
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		span.RecordError(err)
		if isTimeout(err) {
			return FetchResult{}, &attemptError{reason: ReasonTimeout, err: err}
		}
		return FetchResult{}, &attemptError{reason: ReasonDecode, err: err}
	}

	// A JSON answer without an elements key still ends the search: the mirror
	// answered, it just had nothing usable.
	if parsed.Elements == nil {
		span.SetStatus(codes.Error, "no elements key")
		return FetchResult{Mirror: mirror, Reason: ReasonNoElements}, nil
	}

	span.SetAttributes(attribute.Int("elements", len(*parsed.Elements)))
	span.SetStatus(codes.Ok, "")
	return FetchResult{Elements: *parsed.Elements, Mirror: mirror}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
