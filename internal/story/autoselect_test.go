package story

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func testAssets(n int) []Asset {
	assets := make([]Asset, n)
	for i := range assets {
		assets[i] = Asset{ID: fmt.Sprintf("a%03d", i), Date: daysAgo(n - i)}
	}
	return assets
}

func checkSelection(t *testing.T, got []Asset, want int) {
	t.Helper()
	if len(got) != want {
		t.Fatalf("expected %d assets, got %d", want, len(got))
	}
	seen := make(map[string]bool, len(got))
	for i, a := range got {
		if seen[a.ID] {
			t.Errorf("duplicate asset %s", a.ID)
		}
		seen[a.ID] = true
		if i > 0 && got[i].Date.Before(got[i-1].Date) {
			t.Errorf("assets not sorted by date at %d", i)
		}
	}
}

func TestAutoSelectCounts(t *testing.T) {
	tests := []struct {
		assets  int
		minimum int
		want    int
	}{
		{assets: 100, minimum: 20, want: 20},
		{assets: 101, minimum: 20, want: 20},
		{assets: 39, minimum: 20, want: 20},
		{assets: 20, minimum: 20, want: 20},
		{assets: 7, minimum: 20, want: 7},
		{assets: 5, minimum: 1, want: 1},
		{assets: 5, minimum: 0, want: 0},
		{assets: 0, minimum: 20, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.minimum, tt.assets), func(t *testing.T) {
			for seed := uint64(0); seed < 10; seed++ {
				rnd := rand.New(rand.NewPCG(seed, seed+1))
				checkSelection(t, AutoSelect(testAssets(tt.assets), tt.minimum, rnd), tt.want)
			}
		})
	}
}

func TestAutoSelectSpreadsAcrossSegments(t *testing.T) {
	// 100 assets, minimum 10: ten segments of ten, one pick each.
	assets := testAssets(100)

	for _, src := range []RandomSource{firstSource{}, lastSource{}} {
		got := AutoSelect(assets, 10, src)
		checkSelection(t, got, 10)

		for i, a := range got {
			var idx int
			fmt.Sscanf(a.ID, "a%03d", &idx)
			if idx/10 != i {
				t.Errorf("%T: pick %d (%s) is not from segment %d", src, i, a.ID, i)
			}
		}
	}
}

func TestAutoSelectTopsUpFromUnused(t *testing.T) {
	// 13 assets, minimum 5: two segments contribute two each and the fifth
	// pick comes from the pooled leftovers.
	got := AutoSelect(testAssets(13), 5, firstSource{})
	checkSelection(t, got, 5)

	want := []string{"a000", "a001", "a002", "a005", "a006"}
	for i, a := range got {
		if a.ID != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], a.ID)
		}
	}
}

func TestAutoSelectDoesNotMutateInput(t *testing.T) {
	assets := testAssets(30)
	before := append([]Asset(nil), assets...)

	AutoSelect(assets, 10, lastSource{})

	for i := range assets {
		if assets[i] != before[i] {
			t.Fatalf("input modified at %d: %s != %s", i, assets[i].ID, before[i].ID)
		}
	}
}

func TestSelection(t *testing.T) {
	assets := testAssets(4)
	sel := newSelection()

	sel.Select(assets[3], assets[1], assets[3])
	if sel.Count() != 2 {
		t.Fatalf("expected duplicates to be ignored, got %d", sel.Count())
	}

	sel.Select(assets[0])
	sel.OrderByDate()
	got := sel.Assets()
	if got[0].ID != "a000" || got[1].ID != "a001" || got[2].ID != "a003" {
		t.Errorf("unexpected order: %v", got)
	}

	if n := sel.Deselect("a001", "missing"); n != 1 {
		t.Errorf("Deselect returned %d, want 1", n)
	}
	if sel.Contains("a001") || !sel.Contains("a003") {
		t.Error("unexpected membership after Deselect")
	}

	sel.DeselectAll()
	if sel.Count() != 0 || sel.Contains("a000") {
		t.Error("expected an empty selection")
	}
}
