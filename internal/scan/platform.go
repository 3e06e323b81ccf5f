package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bountyledger/internal/domain"
	"bountyledger/internal/idhash"
)

// PlatformConfig describes one JSON listing API.
type PlatformConfig struct {
	Name     string
	Endpoint string
	Params   map[string]string
	Headers  map[string]string

	// ItemsKey is the object key holding the listing array when the payload
	// is not a bare array.
	ItemsKey string
}

// JSONScanner fetches listings from a platform that serves JSON over HTTP
// GET. Source schemas are unversioned, so field extraction probes a fixed
// set of plausible key names and defaults anything unresolvable.
type JSONScanner struct {
	cfg    PlatformConfig
	client *http.Client
	log    zerolog.Logger
}

// NewJSONScanner creates a scanner for one JSON listing platform.
func NewJSONScanner(cfg PlatformConfig, opts ...Option) *JSONScanner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &JSONScanner{cfg: cfg, client: o.client, log: o.log}
}

// Platform returns the configured platform identifier.
func (s *JSONScanner) Platform() string {
	return s.cfg.Name
}

// Scan fetches and normalizes the platform's open listings. Any transport
// or schema fault is absorbed: it is logged and yields an empty result.
func (s *JSONScanner) Scan(ctx context.Context) ([]domain.Opportunity, int) {
	items, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("platform", s.cfg.Name).Msg("platform scan failed")
		return nil, 0
	}

	opps := make([]domain.Opportunity, 0, len(items))
	for _, item := range items {
		o := domain.Opportunity{
			Platform:   s.cfg.Name,
			ExternalID: stringField(item, "id"),
			Title:      clip(stringField(item, "title", "text"), domain.MaxTitleLen),
			Reward:     decimalField(item, "reward", "amount"),
			Currency:   stringFieldOr(item, "USDC", "currency", "token"),
			URL:        stringField(item, "url", "link"),
			Raw:        item,
		}
		if o.ExternalID == "" {
			o.ExternalID = idhash.ComputeListingID(o.Platform, o.Title, o.URL)
		}
		opps = append(opps, o)
	}
	return opps, len(items)
}

func (s *JSONScanner) fetch(ctx context.Context) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	for k, v := range s.cfg.Params {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return decodeItems(body, s.cfg.ItemsKey)
}

// decodeItems accepts either a bare JSON array of listings or an object
// holding the array under itemsKey. An object without the key is an empty
// listing set, not an error.
func decodeItems(body []byte, itemsKey string) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(body, &items); err == nil {
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	raw, ok := envelope[itemsKey]
	if !ok {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("malformed %q array: %w", itemsKey, err)
	}
	return items, nil
}

// stringField probes keys in order and returns the first non-empty string
// rendering found.
func stringField(item map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(item[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringFieldOr is stringField with a fallback for unresolvable fields.
func stringFieldOr(item map[string]any, fallback string, keys ...string) string {
	if s := stringField(item, keys...); s != "" {
		return s
	}
	return fallback
}

// decimalField probes keys in order and returns the first value that parses
// as an amount; anything unresolvable is zero (unknown reward).
func decimalField(item map[string]any, keys ...string) decimal.Decimal {
	for _, k := range keys {
		switch v := item[k].(type) {
		case float64:
			if v != 0 {
				return decimal.NewFromFloat(v)
			}
		case string:
			if d, err := decimal.NewFromString(v); err == nil && !d.IsZero() {
				return d
			}
		}
	}
	return decimal.Zero
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
