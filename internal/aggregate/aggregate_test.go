package aggregate

import (
	"reflect"
	"testing"

	"offermonitor/internal/money"
	"offermonitor/internal/source"
)

func offer(src, title string, price money.Amount) source.Offer {
	return source.Offer{Source: src, Title: title, Price: price, Link: "https://" + src + ".com/p"}
}

func TestRank_SortsAscendingAndTruncates(t *testing.T) {
	in := []source.Offer{
		offer("a", "caro", 500000),
		offer("b", "barato", 5000),
		offer("c", "médio", 120000),
		offer("d", "quase barato", 6000),
	}
	out := Rank(in, 3, 0)
	if len(out) != 3 {
		t.Fatalf("want 3, got %d: %+v", len(out), out)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].Price > out[i].Price {
			t.Fatalf("not sorted ascending: %+v", out)
		}
	}
	if out[0].Title != "barato" || out[2].Title != "médio" {
		t.Fatalf("unexpected ranking: %+v", out)
	}
}

func TestRank_PriceCeiling(t *testing.T) {
	in := []source.Offer{
		offer("a", "ok", 300000),
		offer("a", "acima", 460000),
		offer("b", "ok2", 420000),
	}
	out := Rank(in, 10, 450000)
	if len(out) != 2 {
		t.Fatalf("want 2 under the ceiling, got %d: %+v", len(out), out)
	}
	for _, o := range out {
		if o.Price > 450000 {
			t.Fatalf("offer above ceiling survived: %+v", o)
		}
	}
}

func TestRank_DedupeExactTriple(t *testing.T) {
	in := []source.Offer{
		offer("a", "Notebook", 100000),
		offer("a", "Notebook", 100000), // exact duplicate, collapses
		offer("b", "Notebook", 100000), // other source, kept
		offer("a", "notebook", 100000), // case differs, kept
		offer("a", "Notebook", 100001), // price differs, kept
	}
	out := Rank(in, 0, 0)
	if len(out) != 4 {
		t.Fatalf("want 4 after dedupe, got %d: %+v", len(out), out)
	}
}

func TestRank_StableTieBreakByEncounterOrder(t *testing.T) {
	in := []source.Offer{
		offer("a", "primeiro", 100000),
		offer("b", "segundo", 100000),
		offer("c", "terceiro", 100000),
	}
	out := Rank(in, 0, 0)
	want := []string{"primeiro", "segundo", "terceiro"}
	for i, w := range want {
		if out[i].Title != w {
			t.Fatalf("tie order broken at %d: %+v", i, out)
		}
	}
}

func TestRank_Idempotent(t *testing.T) {
	in := []source.Offer{
		offer("a", "x", 300000),
		offer("b", "y", 5000),
		offer("b", "y", 5000),
		offer("c", "z", 460000),
	}
	once := Rank(in, 3, 450000)
	twice := Rank(once, 3, 450000)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Rank not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	if out := Rank(nil, 5, 0); len(out) != 0 {
		t.Fatalf("want empty, got %+v", out)
	}
}
