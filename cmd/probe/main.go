// Command probe fetches and extracts a single configured source, printing
// the built offers as JSON. It exists for the steady-state failure mode of
// scraping: when a site changes its markup, probe shows what the selectors
// still find.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"offermonitor/internal/config"
	"offermonitor/internal/httpx"
	"offermonitor/internal/source"
	"offermonitor/internal/source/cardscrape"
	"offermonitor/internal/source/mercadolivre"
)

func main() {
	var sourceName string
	var query string
	var configPath string
	var rawCards bool

	flag.StringVar(&sourceName, "source", "", "source to probe (mercadolivre or a card source name)")
	flag.StringVar(&query, "query", getenv("QUERY", ""), "product search query (overrides config)")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.BoolVar(&rawCards, "raw", false, "print raw cards before validation instead of built offers")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if query == "" {
		query = cfg.Monitor.Query
	}

	httpClient := httpx.New(time.Duration(cfg.Monitor.RequestTimeoutSec) * time.Second)

	src, names := pickSource(cfg, httpClient, sourceName)
	if src == nil {
		log.Fatalf("unknown source %q; available: %s", sourceName, strings.Join(names, ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cards, err := src.Fetch(ctx, query)
	if err != nil {
		log.Fatalf("%s: %v", src.Name(), err)
	}
	slog.Info("extracted", "source", src.Name(), "cards", len(cards))

	if rawCards {
		dump(cards)
		return
	}

	offers := make([]source.Offer, 0, len(cards))
	for _, card := range cards {
		o, err := source.Build(card, src.Name(), cfg.Monitor.Brand)
		if err != nil {
			slog.Debug("card rejected", "err", err, "title", card.Title)
			continue
		}
		offers = append(offers, o)
	}
	slog.Info("built", "offers", len(offers), "rejected", len(cards)-len(offers))
	dump(offers)
}

func pickSource(cfg config.Config, hc *httpx.Client, name string) (source.Source, []string) {
	var names []string
	var picked source.Source

	if cfg.MercadoLivre.Enabled {
		names = append(names, "mercadolivre")
		if name == "" || name == "mercadolivre" {
			picked = mercadolivre.New(mercadolivre.Config{
				URL:          cfg.MercadoLivre.Endpoint,
				Limit:        cfg.MercadoLivre.Limit,
				PriceInCents: cfg.MercadoLivre.PriceInCents,
			}, hc)
		}
	}
	for _, cs := range cfg.CardSources {
		names = append(names, cs.Name)
		if picked == nil && (name == "" || name == cs.Name) {
			picked = cardscrape.New(cardscrape.Config{
				Name:          cs.Name,
				BaseURL:       cs.BaseURL,
				SearchPath:    cs.SearchPath,
				CardSelector:  cs.CardSelector,
				TitleSelector: cs.TitleSelector,
				PriceSelector: cs.PriceSelector,
			}, hc)
		}
	}
	return picked, names
}

func dump(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
