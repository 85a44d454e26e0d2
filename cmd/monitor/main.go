package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"offermonitor/internal/config"
	"offermonitor/internal/httpx"
	"offermonitor/internal/money"
	"offermonitor/internal/monitor"
	"offermonitor/internal/notify"
	"offermonitor/internal/report"
	"offermonitor/internal/source"
	"offermonitor/internal/source/cardscrape"
	"offermonitor/internal/source/mercadolivre"
	"offermonitor/internal/source/ratelimit"
)

func main() {
	var query string
	var brand string
	var topK int
	var maxPrice string
	var timeout int
	var configPath string
	var dryRun bool
	var verbose bool

	flag.StringVar(&query, "query", getenv("QUERY", ""), "product search query (overrides config)")
	flag.StringVar(&brand, "brand", getenv("BRAND", ""), "brand tag stamped on every offer")
	flag.IntVar(&topK, "top-k", getenvInt("TOP_K", 0), "offers kept after ranking")
	flag.StringVar(&maxPrice, "max-price", getenv("MAX_PRICE", ""), "price ceiling, e.g. \"4500,00\"")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 0), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.BoolVar(&dryRun, "dry-run", false, "print the report instead of sending it")
	flag.BoolVar(&verbose, "v", false, "log rejected cards")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if query != "" {
		cfg.Monitor.Query = query
	}
	if brand != "" {
		cfg.Monitor.Brand = brand
	}
	if topK > 0 {
		cfg.Monitor.TopK = topK
	}
	if maxPrice != "" {
		cfg.Monitor.MaxPrice = maxPrice
	}
	if timeout > 0 {
		cfg.Monitor.RequestTimeoutSec = timeout
	}
	if strings.TrimSpace(cfg.Monitor.Query) == "" {
		log.Fatal("no query configured; set -query, QUERY or monitor.query")
	}

	var ceiling money.Amount
	if cfg.Monitor.MaxPrice != "" {
		ceiling, err = money.Parse(cfg.Monitor.MaxPrice)
		if err != nil {
			log.Fatalf("max price %q: %v", cfg.Monitor.MaxPrice, err)
		}
	}

	httpClient := httpx.New(time.Duration(cfg.Monitor.RequestTimeoutSec) * time.Second)

	sources := buildSources(cfg, httpClient)
	if len(sources) == 0 {
		log.Fatal("no sources configured; enable mercadolivre or add card_sources")
	}

	var notifier notify.Notifier
	if !dryRun {
		if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" {
			log.Fatal("twilio credentials not set; use -dry-run or set TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN")
		}
		tw, err := notify.NewTwilioClient(notify.TwilioConfig{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			From:       cfg.Twilio.From,
			To:         cfg.Twilio.To,
		}, notify.WithHTTPClient(httpClient.HTTP))
		if err != nil {
			log.Fatalf("twilio: %v", err)
		}
		notifier = tw
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	runner := monitor.New(monitor.Config{
		Query:    cfg.Monitor.Query,
		Brand:    cfg.Monitor.Brand,
		TopK:     cfg.Monitor.TopK,
		MaxPrice: ceiling,
	}, sources, notifier, logger)

	if dryRun {
		fmt.Println(report.Render(runner.Collect(ctx)))
		return
	}

	res, err := runner.Run(ctx)
	fmt.Println(res.Report)
	if err != nil {
		// the report above is still the computed result; only delivery failed
		log.Fatalf("%v", err)
	}
}

func buildSources(cfg config.Config, hc *httpx.Client) []source.Source {
	var sources []source.Source
	if cfg.MercadoLivre.Enabled {
		ml := mercadolivre.New(mercadolivre.Config{
			URL:          cfg.MercadoLivre.Endpoint,
			Limit:        cfg.MercadoLivre.Limit,
			PriceInCents: cfg.MercadoLivre.PriceInCents,
		}, hc)
		sources = append(sources, withRateLimit(ml,
			cfg.MercadoLivre.MaxRequestsPerMinute, cfg.MercadoLivre.Burst, cfg.MercadoLivre.MinRequestIntervalSec))
	}
	for _, cs := range cfg.CardSources {
		if cs.BaseURL == "" {
			slog.Warn("card source without base_url skipped", "name", cs.Name)
			continue
		}
		sc := cardscrape.New(cardscrape.Config{
			Name:          cs.Name,
			BaseURL:       cs.BaseURL,
			SearchPath:    cs.SearchPath,
			CardSelector:  cs.CardSelector,
			TitleSelector: cs.TitleSelector,
			PriceSelector: cs.PriceSelector,
		}, hc)
		sources = append(sources, withRateLimit(sc, cs.MaxRequestsPerMinute, cs.Burst, cs.MinRequestIntervalSec))
	}
	return sources
}

// withRateLimit prefers a token bucket when an RPM cap is set, otherwise a
// minimum interval when configured.
func withRateLimit(s source.Source, maxRPM, burst, minIntervalSec int) source.Source {
	if maxRPM > 0 {
		rate := float64(maxRPM) / 60.0
		if burst <= 0 {
			burst = 1
		}
		return &ratelimit.TokenBucketSource{S: s, TB: ratelimit.NewTokenBucket(rate, burst)}
	}
	if minIntervalSec > 0 {
		return &ratelimit.MinInterval{S: s, Interval: time.Duration(minIntervalSec) * time.Second}
	}
	return s
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}
