package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type Monitor struct {
	Query             string `json:"query"`
	Brand             string `json:"brand"`
	TopK              int    `json:"top_k"`
	MaxPrice          string `json:"max_price"` // price ceiling, e.g. "4500,00"; empty disables
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type MercadoLivre struct {
	Enabled               bool   `json:"enabled"`
	Endpoint              string `json:"endpoint"`
	Limit                 int    `json:"limit"`
	PriceInCents          bool   `json:"price_in_cents"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	Burst                 int    `json:"burst"`
}

// CardSource configures one scraped catalog site. The selectors are the
// per-site facts; the extraction strategy is shared.
type CardSource struct {
	Name                  string `json:"name"`
	BaseURL               string `json:"base_url"`
	SearchPath            string `json:"search_path"`
	CardSelector          string `json:"card_selector"`
	TitleSelector         string `json:"title_selector"`
	PriceSelector         string `json:"price_selector"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	Burst                 int    `json:"burst"`
}

type Twilio struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	From       string `json:"from"`
	To         string `json:"to"`
}

type Config struct {
	Monitor      Monitor      `json:"monitor"`
	MercadoLivre MercadoLivre `json:"mercadolivre"`
	CardSources  []CardSource `json:"card_sources"`
	Twilio       Twilio       `json:"twilio"`
}

func Default() Config {
	return Config{
		Monitor: Monitor{
			Query:             "notebook acer nitro 5",
			TopK:              5,
			RequestTimeoutSec: 10,
		},
		MercadoLivre: MercadoLivre{
			Enabled:  true,
			Endpoint: "https://api.mercadolibre.com/sites/MLB/search",
			Limit:    50,
		},
		CardSources: []CardSource{
			{
				Name:          "buscape",
				BaseURL:       "https://www.buscape.com.br",
				SearchPath:    "/search?q=%s",
				CardSelector:  `div[data-testid="product-card"]`,
				TitleSelector: `h2[data-testid="product-card::name"]`,
				PriceSelector: `p[data-testid="product-card::price"]`,
			},
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUERY"); v != "" {
		cfg.Monitor.Query = v
	}
	if v := os.Getenv("BRAND"); v != "" {
		cfg.Monitor.Brand = v
	}
	if v := os.Getenv("TOP_K"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Monitor.TopK = x
		}
	}
	if v := os.Getenv("MAX_PRICE"); v != "" {
		cfg.Monitor.MaxPrice = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Monitor.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("MERCADOLIVRE_ENABLED"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y":
			cfg.MercadoLivre.Enabled = true
		case "0", "false", "no", "n":
			cfg.MercadoLivre.Enabled = false
		}
	}
	if v := os.Getenv("MERCADOLIVRE_ENDPOINT"); v != "" {
		cfg.MercadoLivre.Endpoint = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Twilio.AuthToken = v
	}
	if v := os.Getenv("TWILIO_FROM"); v != "" {
		cfg.Twilio.From = v
	}
	if v := os.Getenv("TWILIO_TO"); v != "" {
		cfg.Twilio.To = v
	}
}
