// Package report renders the ranked offer list into the outgoing message
// body.
package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"offermonitor/internal/source"
)

// MaxBodyLen is the WhatsApp message body ceiling. The renderer stays under
// it structurally: the aggregator bounds the offer count and titles are cut
// to maxTitleCells, so no finished block is ever chopped mid-way.
const MaxBodyLen = 1600

// maxTitleCells bounds titles by display cells rather than bytes, so wide
// runes don't blow past the channel limit.
const maxTitleCells = 60

// Render serializes ranked offers into the message body: a header line plus
// one price/title/link block per offer. An empty list renders a single
// sentence instead of an empty body.
func Render(offers []source.Offer) string {
	if len(offers) == 0 {
		return "Nenhuma oferta encontrada nesta rodada."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *Top %d menores preços* 🔥\n\n", len(offers))
	for _, o := range offers {
		fmt.Fprintf(&b, "💰 *R$ %s*\n%s\n%s\n\n",
			o.Price,
			runewidth.Truncate(o.Title, maxTitleCells, "…"),
			o.Link,
		)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
