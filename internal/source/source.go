package source

import (
	"context"
	"errors"
	"strings"

	"offermonitor/internal/money"
)

// Offer is the normalized record shared by all sources: one product price
// at one catalog. Offers are value types; nothing mutates them after Build.
type Offer struct {
	Source string       `json:"source"`
	Title  string       `json:"title"`
	Price  money.Amount `json:"price_cents"`
	Link   string       `json:"link"`
	Brand  string       `json:"brand,omitempty"`
}

// RawCard is one unvalidated entry extracted from a source's result list.
// Either PriceText (markup sources) or Price (structured-API sources,
// HasPrice=true) is set; the builder resolves which.
type RawCard struct {
	Title     string
	PriceText string
	Price     money.Amount
	HasPrice  bool
	Link      string
	// Excerpt is a bounded slice of the card's full visible text, used as
	// a title fallback when no dedicated title element was found.
	Excerpt string
}

// Source is implemented once per catalog. Fetch retrieves the search
// results for query and extracts the raw cards; transport failures are
// returned, structurally alien content yields an empty slice.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]RawCard, error)
}

// ErrRejected marks a card that failed validation. Rejections are logged
// and skipped, never fatal to the batch.
var ErrRejected = errors.New("source: card rejected")

const excerptTitleLen = 60

// Build validates a raw card into an Offer. A card is rejected when its
// price text does not normalize, or when title and link cannot both be
// established.
func Build(card RawCard, src, brand string) (Offer, error) {
	price := card.Price
	if !card.HasPrice {
		p, err := money.Parse(card.PriceText)
		if err != nil {
			return Offer{}, errors.Join(ErrRejected, err)
		}
		price = p
	}
	if price < 0 {
		return Offer{}, ErrRejected
	}

	title := strings.TrimSpace(card.Title)
	if title == "" {
		title = excerpt(card.Excerpt)
	}
	if title == "" {
		return Offer{}, ErrRejected
	}

	link := strings.TrimSpace(card.Link)
	if link == "" {
		return Offer{}, ErrRejected
	}

	return Offer{Source: src, Title: title, Price: price, Link: link, Brand: brand}, nil
}

func excerpt(text string) string {
	t := strings.Join(strings.Fields(text), " ")
	r := []rune(t)
	if len(r) > excerptTitleLen {
		return string(r[:excerptTitleLen])
	}
	return t
}
