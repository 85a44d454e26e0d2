// Package mercadolivre implements the structured-API source over the
// Mercado Livre site search endpoint.
package mercadolivre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"offermonitor/internal/httpx"
	"offermonitor/internal/money"
	"offermonitor/internal/source"
)

type Config struct {
	Name    string
	URL     string // search endpoint, e.g. https://api.mercadolibre.com/sites/MLB/search
	Headers map[string]string
	Limit   int // max results requested per search; 0 uses the API default
	// PriceInCents records whether this endpoint reports prices in minor
	// units. The public search API reports major units. This is a
	// configuration fact about the endpoint, never inferred from payloads.
	PriceInCents bool
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "mercadolivre"
	}
	if cfg.URL == "" {
		cfg.URL = "https://api.mercadolibre.com/sites/MLB/search"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Fetch queries the search endpoint and extracts one raw card per result.
// Prices arrive numeric, so these cards skip the text normalizer.
func (p *Provider) Fetch(ctx context.Context, query string) ([]source.RawCard, error) {
	u, err := url.Parse(p.cfg.URL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	if p.cfg.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", p.cfg.Limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range p.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s -> %d", u.String(), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	cards, err := p.Extract(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u.String(), err)
	}
	return cards, nil
}

// Extract converts a raw search response body into raw cards. Results
// missing a price or a permalink are dropped here; permalinks arrive
// absolute from the API. Split out so tests and the probe command can run
// on captured payloads.
func (p *Provider) Extract(data []byte) ([]source.RawCard, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var api apiResponse
	if err := dec.Decode(&api); err != nil {
		return nil, err
	}

	cards := make([]source.RawCard, 0, len(api.Results))
	for _, r := range api.Results {
		if r.Price == nil || strings.TrimSpace(r.Permalink) == "" {
			continue
		}
		v, err := r.Price.Float64()
		if err != nil || v < 0 {
			continue
		}
		amount := money.FromMajorUnits(v)
		if p.cfg.PriceInCents {
			amount = money.FromCents(int64(v))
		}
		cards = append(cards, source.RawCard{
			Title:    strings.TrimSpace(r.Title),
			Price:    amount,
			HasPrice: true,
			Link:     strings.TrimSpace(r.Permalink),
		})
	}
	return cards, nil
}

type apiResponse struct {
	Results []result `json:"results"`
}

type result struct {
	Title     string       `json:"title"`
	Price     *json.Number `json:"price"`
	Permalink string       `json:"permalink"`
}
