// Package assemble turns fingerprint collisions into maximal contiguous
// clone groups between pairs of locations.
package assemble

import (
	"encoding/hex"
	"sort"

	"github.com/pastiche-dev/pastiche/internal/index"
	"github.com/pastiche-dev/pastiche/internal/normalize"
	"github.com/pastiche-dev/pastiche/pkg/models"
	"github.com/zeebo/blake3"
)

// match is one shared fingerprint between two ordered locations.
type match struct {
	aStart, aEnd int
	bStart, bEnd int
}

// diagKey groups matches that can coalesce: same file pair, same relative
// offset between the two sides.
type diagKey struct {
	fileA, fileB int
	offset       int
}

// pairKey identifies an unordered-but-normalized file pair.
type pairKey struct {
	fileA, fileB int
}

// Assemble merges collision matches into clone groups. streams is indexed
// by file id and provides the token-to-line back-mapping. Groups shorter
// than minTokens on either side are discarded; groups subsumed by a larger
// group over the same pair are dropped. Output order is stable: by file
// pair, then by start positions, independent of how the index was built.
func Assemble(ix *index.Index, streams []*normalize.Stream, minTokens, gapTolerance int) []models.CloneGroup {
	diagonals := make(map[diagKey][]match)

	for _, h := range ix.CollisionHashes() {
		locs := ix.Lookup(h)
		for i := 0; i < len(locs); i++ {
			for j := i + 1; j < len(locs); j++ {
				la, lb := locs[i], locs[j]
				if la.File > lb.File || (la.File == lb.File && la.Start > lb.Start) {
					la, lb = lb, la
				}
				if la.File == lb.File {
					if la.Start == lb.Start {
						continue
					}
					// Overlapping spans in the same file are the fragment
					// matching itself, not a clone.
					if lb.Start <= la.End {
						continue
					}
				}
				key := diagKey{fileA: la.File, fileB: lb.File, offset: lb.Start - la.Start}
				diagonals[key] = append(diagonals[key], match{
					aStart: la.Start, aEnd: la.End,
					bStart: lb.Start, bEnd: lb.End,
				})
			}
		}
	}

	// Coalesce each diagonal's matches into maximal runs.
	candidates := make(map[pairKey][]models.CloneGroup)
	for key, ms := range diagonals {
		sort.Slice(ms, func(i, j int) bool { return ms[i].aStart < ms[j].aStart })

		cur := ms[0]
		flush := func() {
			extend(streams, key.fileA, key.fileB, &cur)
			if cur.aEnd-cur.aStart+1 < minTokens {
				return
			}
			pk := pairKey{key.fileA, key.fileB}
			candidates[pk] = append(candidates[pk], buildGroup(streams, key.fileA, key.fileB, cur))
		}
		for _, m := range ms[1:] {
			if m.aStart-cur.aEnd <= gapTolerance {
				if m.aEnd > cur.aEnd {
					cur.aEnd = m.aEnd
					cur.bEnd = m.bEnd
				}
				continue
			}
			flush()
			cur = m
		}
		flush()
	}

	var groups []models.CloneGroup
	for _, pairGroups := range candidates {
		groups = append(groups, dedupe(pairGroups)...)
	}

	sort.Slice(groups, func(i, j int) bool {
		gi, gj := groups[i], groups[j]
		if gi.A.File != gj.A.File {
			return gi.A.File < gj.A.File
		}
		if gi.B.File != gj.B.File {
			return gi.B.File < gj.B.File
		}
		if gi.A.StartToken != gj.A.StartToken {
			return gi.A.StartToken < gj.A.StartToken
		}
		return gi.B.StartToken < gj.B.StartToken
	})
	return groups
}

// extend grows a coalesced run outward token by token while both sides still
// agree, making the reported region maximal rather than bounded by which
// grams winnowing happened to select. Same-file runs stop before the two
// sides would touch.
func extend(streams []*normalize.Stream, fileA, fileB int, m *match) {
	sa, sb := streams[fileA], streams[fileB]

	for m.aStart > 0 && m.bStart > 0 &&
		sa.Tokens[m.aStart-1].Text == sb.Tokens[m.bStart-1].Text {
		if fileA == fileB && m.bStart-1 <= m.aEnd {
			break
		}
		m.aStart--
		m.bStart--
	}
	for m.aEnd+1 < sa.Len() && m.bEnd+1 < sb.Len() &&
		sa.Tokens[m.aEnd+1].Text == sb.Tokens[m.bEnd+1].Text {
		if fileA == fileB && m.aEnd+1 >= m.bStart {
			break
		}
		m.aEnd++
		m.bEnd++
	}
}

func buildGroup(streams []*normalize.Stream, fileA, fileB int, m match) models.CloneGroup {
	sa, sb := streams[fileA], streams[fileB]
	aFirst, aLast := sa.LineRange(m.aStart, m.aEnd)
	bFirst, bLast := sb.LineRange(m.bStart, m.bEnd)

	sum := blake3.Sum256([]byte(sa.SpanText(m.aStart, m.aEnd)))

	return models.CloneGroup{
		ID: hex.EncodeToString(sum[:8]),
		A: models.Occurrence{
			File:       sa.Path,
			StartLine:  aFirst,
			EndLine:    aLast,
			StartToken: m.aStart,
			EndToken:   m.aEnd,
		},
		B: models.Occurrence{
			File:       sb.Path,
			StartLine:  bFirst,
			EndLine:    bLast,
			StartToken: m.bStart,
			EndToken:   m.bEnd,
		},
		TokenCount: m.aEnd - m.aStart + 1,
		LineCount:  aLast - aFirst + 1,
	}
}

// dedupe removes groups whose token ranges on both sides are contained in a
// larger group over the same file pair. Largest first, so containment only
// needs checking against already-kept groups.
func dedupe(groups []models.CloneGroup) []models.CloneGroup {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TokenCount != groups[j].TokenCount {
			return groups[i].TokenCount > groups[j].TokenCount
		}
		if groups[i].A.StartToken != groups[j].A.StartToken {
			return groups[i].A.StartToken < groups[j].A.StartToken
		}
		return groups[i].B.StartToken < groups[j].B.StartToken
	})

	kept := groups[:0:0]
	for _, g := range groups {
		subsumed := false
		for _, k := range kept {
			if k.A.StartToken <= g.A.StartToken && g.A.EndToken <= k.A.EndToken &&
				k.B.StartToken <= g.B.StartToken && g.B.EndToken <= k.B.EndToken {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, g)
		}
	}
	return kept
}
