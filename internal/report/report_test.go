package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"offermonitor/internal/money"
	"offermonitor/internal/source"
)

func TestRender_Blocks(t *testing.T) {
	offers := []source.Offer{
		{Source: "b", Title: "Notebook B", Price: money.Amount(5000), Link: "https://x.com/b"},
		{Source: "a", Title: "Notebook A", Price: money.Amount(10000), Link: "https://src.com/p/a"},
	}
	out := Render(offers)

	require.Contains(t, out, "Top 2 menores preços")
	require.Contains(t, out, "R$ 50.00")
	require.Contains(t, out, "R$ 100.00")
	require.Contains(t, out, "https://src.com/p/a")
	require.Less(t, strings.Index(out, "Notebook B"), strings.Index(out, "Notebook A"),
		"offers render in ranked order")
}

func TestRender_Empty(t *testing.T) {
	out := Render(nil)
	require.NotEmpty(t, out)
	require.NotContains(t, out, "R$")
}

func TestRender_TruncatesLongTitles(t *testing.T) {
	offers := []source.Offer{{
		Source: "a",
		Title:  strings.Repeat("Notebook Gamer Acer Nitro 5 ", 10),
		Price:  money.Amount(424900),
		Link:   "https://x.com/a",
	}}
	out := Render(offers)
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Notebook") {
			require.LessOrEqual(t, len([]rune(line)), 61)
		}
	}
}

func TestRender_StaysUnderChannelCeiling(t *testing.T) {
	// Worst case at the default top-5: max-length titles and long links.
	var offers []source.Offer
	for i := 0; i < 5; i++ {
		offers = append(offers, source.Offer{
			Source: "b",
			Title:  strings.Repeat("x", 200),
			Price:  money.Amount(99999999),
			Link:   "https://www.exemplo.com.br/" + strings.Repeat("categoria/", 8) + "produto",
		})
	}
	out := Render(offers)
	require.LessOrEqual(t, len(out), MaxBodyLen)
}
