// Package suppress filters benign clone groups out of the report: groups
// whose surrounding source matches a configured rule, and whole families of
// sibling boilerplate once any one member carries a marker.
package suppress

import (
	"sort"
	"strings"

	"github.com/pastiche-dev/pastiche/pkg/models"
	"github.com/pastiche-dev/pastiche/pkg/source"
)

// Engine applies suppression rules to assembled clone groups.
type Engine struct {
	rules     []Rule
	minFamily int
	src       source.ContentSource
	lineCache map[string][]string
}

// New creates an engine. minFamily is the minimum number of distinct
// locations a clone family needs before sibling-aware suppression applies;
// a value below 2 disables it.
func New(rules []Rule, minFamily int, src source.ContentSource) *Engine {
	return &Engine{
		rules:     rules,
		minFamily: minFamily,
		src:       src,
		lineCache: make(map[string][]string),
	}
}

// Apply returns the groups that survive suppression, preserving order.
//
// A group is suppressed directly when any rule matches any line of either
// side's context (one raw line above the clone plus every line within it).
// Beyond that, groups are clustered into families by transitive overlap of
// their occurrence spans; a family spanning at least minFamily distinct
// locations with at least one directly-matching member is suppressed
// entirely. Boilerplate forced by a shared contract shows up as repetition
// across many siblings, so the marker is only required once per family.
func (e *Engine) Apply(groups []models.CloneGroup) []models.CloneGroup {
	if len(groups) == 0 || len(e.rules) == 0 {
		return groups
	}

	matched := make([]bool, len(groups))
	for i, g := range groups {
		matched[i] = e.contextMatches(g.A) || e.contextMatches(g.B)
	}

	familyOut := e.familySuppressed(groups, matched)

	kept := make([]models.CloneGroup, 0, len(groups))
	for i, g := range groups {
		if matched[i] || familyOut[i] {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

// contextMatches checks the occurrence's context lines against every rule.
func (e *Engine) contextMatches(o models.Occurrence) bool {
	lines := e.fileLines(o.File)
	if lines == nil {
		return false
	}
	start := o.StartLine - 1 // one line of context above, clamped
	if start < 1 {
		start = 1
	}
	end := o.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	for ln := start; ln <= end; ln++ {
		for _, rule := range e.rules {
			if rule.Match(lines[ln-1]) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) fileLines(path string) []string {
	if lines, ok := e.lineCache[path]; ok {
		return lines
	}
	content, err := e.src.Read(path)
	var lines []string
	if err == nil {
		lines = strings.Split(string(content), "\n")
	}
	e.lineCache[path] = lines
	return lines
}

// occRef points one side of a group at its merged location node.
type occRef struct {
	group int
	occ   models.Occurrence
	loc   int
}

// familySuppressed computes, per group, whether sibling-aware family
// suppression removes it.
func (e *Engine) familySuppressed(groups []models.CloneGroup, matched []bool) []bool {
	out := make([]bool, len(groups))
	if e.minFamily < 2 {
		return out
	}

	// Merge overlapping occurrence spans in the same file into location
	// nodes: the same fragment reported against several partners counts as
	// one location.
	refs := make([]occRef, 0, 2*len(groups))
	for i, g := range groups {
		refs = append(refs, occRef{group: i, occ: g.A}, occRef{group: i, occ: g.B})
	}
	order := make([]int, len(refs))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		a, b := refs[order[x]].occ, refs[order[y]].occ
		if a.File != b.File {
			return a.File < b.File
		}
		return a.StartToken < b.StartToken
	})

	nextLoc := 0
	curFile := ""
	curEnd := -1
	for _, idx := range order {
		o := refs[idx].occ
		if o.File != curFile || o.StartToken > curEnd {
			nextLoc++
			curFile = o.File
			curEnd = o.EndToken
		} else if o.EndToken > curEnd {
			curEnd = o.EndToken
		}
		refs[idx].loc = nextLoc - 1
	}

	// Union-find over locations; each group links its two sides.
	dsu := newDSU(nextLoc)
	for i := 0; i < len(refs); i += 2 {
		dsu.union(refs[i].loc, refs[i+1].loc)
	}

	locsPerRoot := make(map[int]map[int]struct{})
	for loc := 0; loc < nextLoc; loc++ {
		root := dsu.find(loc)
		if locsPerRoot[root] == nil {
			locsPerRoot[root] = make(map[int]struct{})
		}
		locsPerRoot[root][loc] = struct{}{}
	}

	markedRoot := make(map[int]bool)
	for i := range groups {
		if matched[i] {
			markedRoot[dsu.find(refs[2*i].loc)] = true
		}
	}

	for i := range groups {
		root := dsu.find(refs[2*i].loc)
		if markedRoot[root] && len(locsPerRoot[root]) >= e.minFamily {
			out[i] = true
		}
	}
	return out
}

// dsu is a disjoint-set union with path compression, enough for the
// near-linear family merging this engine needs.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &dsu{parent: parent}
}

func (d *dsu) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(x, y int) {
	px, py := d.find(x), d.find(y)
	if px != py {
		d.parent[px] = py
	}
}
