package fingerprint

// Fingerprint is a k-gram hash selected by winnowing, tagged with its
// inclusive token span in the source stream.
type Fingerprint struct {
	Hash  uint64
	Start int
	End   int
}

// Winnow slides a window over the gram hash sequence and keeps the minimum
// hash of each window, choosing the rightmost occurrence on ties. The
// rightmost convention is used everywhere in this codebase; mixing
// conventions across files would break collision matching.
//
// Guarantee: any run of at least k+window-1 identical normalized tokens at
// two locations yields at least one shared fingerprint hash between them.
// That bound is the guaranteed detection threshold for min_tokens.
func Winnow(grams []Gram, window int) []Fingerprint {
	if len(grams) == 0 {
		return nil
	}
	if window <= 1 {
		out := make([]Fingerprint, len(grams))
		for i, g := range grams {
			out[i] = Fingerprint{Hash: g.Hash, Start: g.Start, End: g.End}
		}
		return out
	}

	// Fewer grams than a full window: keep the (rightmost) minimum so short
	// files still contribute one fingerprint.
	if len(grams) < window {
		minIdx := 0
		for i := 1; i < len(grams); i++ {
			if grams[i].Hash <= grams[minIdx].Hash {
				minIdx = i
			}
		}
		g := grams[minIdx]
		return []Fingerprint{{Hash: g.Hash, Start: g.Start, End: g.End}}
	}

	var selected []Fingerprint
	prev := -1
	for ws := 0; ws+window <= len(grams); ws++ {
		minIdx := ws
		for i := ws + 1; i < ws+window; i++ {
			// <= keeps the rightmost minimum on ties.
			if grams[i].Hash <= grams[minIdx].Hash {
				minIdx = i
			}
		}
		// Re-emitting the same position when the minimum survives into the
		// next window would duplicate fingerprints.
		if minIdx != prev {
			g := grams[minIdx]
			selected = append(selected, Fingerprint{Hash: g.Hash, Start: g.Start, End: g.End})
			prev = minIdx
		}
	}
	return selected
}
