package story

// RandomSource picks uniformly distributed indices. *math/rand/v2.Rand
// satisfies it; tests inject deterministic sources.
type RandomSource interface {
	IntN(n int) int
}

// AutoSelect picks minimum assets spread evenly across the story.
//
// Assets (in date order) are cut into len(assets)/minimum contiguous segments
// of minimum assets each, the last segment taking the remainder. Each segment
// contributes minimum/segments randomly drawn assets; the rest are pooled and
// drawn from at random until minimum assets are selected. The result is
// sorted by date.
//
// When there are no more assets than minimum, every asset is selected.
func AutoSelect(assets []Asset, minimum int, rnd RandomSource) []Asset {
	if minimum <= 0 || len(assets) == 0 {
		return nil
	}

	if len(assets) <= minimum {
		selected := append([]Asset(nil), assets...)
		sortByDate(selected)
		return selected
	}

	segments := len(assets) / minimum
	perSegment := minimum / segments

	selected := make([]Asset, 0, minimum)
	var unused []Asset

	for i := 0; i < segments; i++ {
		start := i * minimum
		end := start + minimum
		if i == segments-1 {
			end = len(assets)
		}

		segment := append([]Asset(nil), assets[start:end]...)
		for k := 0; k < perSegment && len(segment) > 0; k++ {
			var picked Asset
			picked, segment = takeAt(segment, rnd.IntN(len(segment)))
			selected = append(selected, picked)
		}
		unused = append(unused, segment...)
	}

	for len(selected) < minimum && len(unused) > 0 {
		var picked Asset
		picked, unused = takeAt(unused, rnd.IntN(len(unused)))
		selected = append(selected, picked)
	}

	sortByDate(selected)
	return selected
}

// takeAt removes the asset at i, keeping the order of the others.
func takeAt(assets []Asset, i int) (Asset, []Asset) {
	picked := assets[i]
	return picked, append(assets[:i], assets[i+1:]...)
}
