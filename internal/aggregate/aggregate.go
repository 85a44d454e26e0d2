package aggregate

import (
	"sort"

	"offermonitor/internal/money"
	"offermonitor/internal/source"
)

// dedupKey identifies duplicate offers. Titles compare exact and
// case-sensitive: different catalogs phrase the same product differently,
// so near-duplicates across sources are deliberately kept apart.
type dedupKey struct {
	Source string
	Title  string
	Price  money.Amount
}

// Rank turns the combined offer list into the final ranked selection:
// ceiling filter, dedupe on (source, title, price) keeping the first
// encounter, stable ascending sort by price (encounter order breaks ties),
// then truncation to topK. maxPrice <= 0 disables the ceiling; topK <= 0
// disables truncation. Output is deterministic for a fixed input order and
// Rank is idempotent on its own output.
func Rank(offers []source.Offer, topK int, maxPrice money.Amount) []source.Offer {
	out := make([]source.Offer, 0, len(offers))
	seen := make(map[dedupKey]struct{}, len(offers))
	for _, o := range offers {
		if maxPrice > 0 && o.Price > maxPrice {
			continue
		}
		k := dedupKey{Source: o.Source, Title: o.Title, Price: o.Price}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}
