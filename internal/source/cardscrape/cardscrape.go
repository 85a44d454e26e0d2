// Package cardscrape implements the generic "product card" scraping source.
// One Scraper instance is configured per catalog site; the selectors are the
// per-site facts, the extraction strategy is shared.
package cardscrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"offermonitor/internal/httpx"
	"offermonitor/internal/source"
)

// Config controls one scraping source.
type Config struct {
	Name       string
	BaseURL    string // scheme+host used for search and for resolving relative links
	SearchPath string // printf pattern receiving the escaped query, e.g. "/search?q=%s"
	// CardSelector matches the site's product card marker. When it matches
	// nothing the scraper falls back to every anchor on the page; that path
	// is lossy by design and relies on downstream validation.
	CardSelector  string
	TitleSelector string            // optional; dedicated title element inside a card
	PriceSelector string            // optional; dedicated price element inside a card
	Headers       map[string]string // optional extra request headers
}

type Scraper struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Scraper {
	if cfg.Name == "" {
		cfg.Name = "cardscrape"
	}
	if cfg.SearchPath == "" {
		cfg.SearchPath = "/search?q=%s"
	}
	return &Scraper{cfg: cfg, client: hc}
}

func (s *Scraper) Name() string { return s.cfg.Name }

// Fetch retrieves the site's search results page for query and extracts
// product cards. An unexpected page structure is not an error: it produces
// zero cards.
func (s *Scraper) Fetch(ctx context.Context, query string) ([]source.RawCard, error) {
	if s.cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: missing base URL", s.cfg.Name)
	}
	u := strings.TrimSuffix(s.cfg.BaseURL, "/") + fmt.Sprintf(s.cfg.SearchPath, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	for k, v := range s.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s -> %d", u, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	return s.Extract(doc), nil
}

// Extract pulls raw cards out of a parsed results page. Candidate cards come
// from CardSelector, or from every anchor when the marker matches nothing.
// Cards without a price fragment or a link are dropped here; the price text
// itself is only validated by the offer builder.
func (s *Scraper) Extract(doc *goquery.Document) []source.RawCard {
	candidates := doc.Find(s.cfg.CardSelector)
	if s.cfg.CardSelector == "" || candidates.Length() == 0 {
		candidates = doc.Find("a[href]")
	}

	var cards []source.RawCard
	candidates.Each(func(_ int, sel *goquery.Selection) {
		text := visibleText(sel)

		priceText := ""
		if s.cfg.PriceSelector != "" {
			priceText = strings.TrimSpace(sel.Find(s.cfg.PriceSelector).First().Text())
		}
		if priceText == "" {
			priceText = priceFragment(text)
		}
		if priceText == "" {
			return
		}

		link := firstLink(sel)
		if link == "" {
			return
		}

		title := ""
		if s.cfg.TitleSelector != "" {
			title = strings.TrimSpace(sel.Find(s.cfg.TitleSelector).First().Text())
		}
		if title == "" {
			if v, ok := sel.Attr("title"); ok {
				title = strings.TrimSpace(v)
			}
		}

		cards = append(cards, source.RawCard{
			Title:     title,
			PriceText: priceText,
			Link:      s.resolveLink(link),
			Excerpt:   text,
		})
	})
	return cards
}

// resolveLink makes root-relative hrefs absolute against the source's base
// URL; anything else passes through unchanged.
func (s *Scraper) resolveLink(href string) string {
	if strings.HasPrefix(href, "/") {
		return strings.TrimSuffix(s.cfg.BaseURL, "/") + href
	}
	return href
}

// firstLink returns the candidate's own href when the candidate is an
// anchor (the fallback path), otherwise the first anchor href inside it.
func firstLink(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	href, _ := sel.Find("a[href]").First().Attr("href")
	return strings.TrimSpace(href)
}

// priceFragment isolates the token following the "R$" marker, up to the
// next whitespace ("por R$ 4.249,00 à vista" -> "4.249,00").
func priceFragment(text string) string {
	idx := strings.Index(text, "R$")
	if idx < 0 {
		return ""
	}
	rest := strings.TrimLeftFunc(text[idx+len("R$"):], unicode.IsSpace)
	if cut := strings.IndexFunc(rest, unicode.IsSpace); cut >= 0 {
		rest = rest[:cut]
	}
	return rest
}

// visibleText joins the selection's text leaves with single spaces.
// goquery's Text() glues adjacent fragments together, which would merge a
// title into the neighbouring price digits.
func visibleText(sel *goquery.Selection) string {
	var frags []string
	for _, node := range sel.Nodes {
		collectText(node, &frags)
	}
	return strings.Join(frags, " ")
}

func collectText(n *html.Node, frags *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*frags = append(*frags, t)
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, frags)
	}
}
