// Package monitor drives one full pass of the offer pipeline: fetch every
// configured source, build and rank offers, render the report and hand it
// to the notification channel.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"offermonitor/internal/aggregate"
	"offermonitor/internal/money"
	"offermonitor/internal/notify"
	"offermonitor/internal/report"
	"offermonitor/internal/source"
)

type Config struct {
	Query    string
	Brand    string       // optional tag stamped on every built offer
	TopK     int          // offers kept after ranking; default 5
	MaxPrice money.Amount // price ceiling; 0 disables
	// MaxConcurrent bounds parallel source fetches. Results are indexed by
	// source position, so concurrency never disturbs the encounter order
	// used for ranking ties.
	MaxConcurrent int
}

const (
	defaultTopK          = 5
	defaultMaxConcurrent = 4
)

// Result is the outcome of one pass. Report and Offers are populated even
// when delivery fails.
type Result struct {
	Offers     []source.Offer
	Report     string
	DeliveryID string
}

type Runner struct {
	cfg      Config
	sources  []source.Source
	notifier notify.Notifier
	log      *slog.Logger
}

// New builds a Runner over an ordered source list. The source order is the
// encounter order: it decides which duplicate survives and how price ties
// rank. notifier may be nil for collect-only callers.
func New(cfg Config, sources []source.Source, notifier notify.Notifier, log *slog.Logger) *Runner {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, sources: sources, notifier: notifier, log: log}
}

// Collect fetches every source and returns the ranked, deduplicated,
// bounded offer list. A failing source contributes zero offers and never
// aborts the pass; a card failing validation is skipped without touching
// its siblings.
func (r *Runner) Collect(ctx context.Context) []source.Offer {
	cardsBySource := make([][]source.RawCard, len(r.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrent)
	for i, s := range r.sources {
		i, s := i, s
		g.Go(func() error {
			cards, err := s.Fetch(gctx, r.cfg.Query)
			if err != nil {
				r.log.Warn("source fetch failed", "source", s.Name(), "err", err)
				return nil
			}
			cardsBySource[i] = cards
			return nil
		})
	}
	// fetch errors are logged per source, never returned
	_ = g.Wait()

	var offers []source.Offer
	for i, s := range r.sources {
		kept := 0
		for _, card := range cardsBySource[i] {
			o, err := source.Build(card, s.Name(), r.cfg.Brand)
			if err != nil {
				r.log.Debug("card rejected", "source", s.Name(), "err", err)
				continue
			}
			offers = append(offers, o)
			kept++
		}
		r.log.Info("source done", "source", s.Name(), "cards", len(cardsBySource[i]), "offers", kept)
	}

	return aggregate.Rank(offers, r.cfg.TopK, r.cfg.MaxPrice)
}

// Run performs one complete pass. The returned Result always carries the
// ranked offers and the rendered report; the error reports delivery
// failure only.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	res := Result{Offers: r.Collect(ctx)}
	res.Report = report.Render(res.Offers)

	if r.notifier == nil {
		return res, errors.New("monitor: no notifier configured")
	}
	id, err := r.notifier.Send(ctx, res.Report)
	if err != nil {
		return res, fmt.Errorf("monitor: delivery failed: %w", err)
	}
	res.DeliveryID = id
	r.log.Info("report delivered", "delivery_id", id, "offers", len(res.Offers))
	return res, nil
}
