// Package index maps fingerprint hashes to every location they occur at
// across the scanned corpus. The index is built once per run behind a single
// merge barrier and is read-only afterwards.
package index

import (
	"sort"

	"github.com/pastiche-dev/pastiche/internal/fingerprint"
)

// Location is one fingerprint occurrence: a token span in a file. File is a
// dense id assigned by the caller in a deterministic order.
type Location struct {
	File  int
	Start int
	End   int
}

// FileFingerprints pairs a file id with its winnowed fingerprints.
type FileFingerprints struct {
	File         int
	Fingerprints []fingerprint.Fingerprint
}

// Index is the frozen hash -> occurrences mapping. Only hashes observed at
// two or more locations are retained; singleton buckets carry no clone
// signal and are dropped at freeze to bound memory.
type Index struct {
	buckets map[uint64][]Location
	hashes  []uint64
}

// Build folds per-file fingerprint lists into the shared map. The caller
// passes files in a deterministic order (sorted by path); bucket contents
// then preserve that order, so downstream output never depends on worker
// scheduling. This is the pipeline's only shared-mutation point and runs
// single-threaded.
func Build(perFile []FileFingerprints) *Index {
	buckets := make(map[uint64][]Location)
	for _, ff := range perFile {
		for _, fp := range ff.Fingerprints {
			buckets[fp.Hash] = append(buckets[fp.Hash], Location{
				File:  ff.File,
				Start: fp.Start,
				End:   fp.End,
			})
		}
	}

	hashes := make([]uint64, 0, len(buckets))
	for h, locs := range buckets {
		if len(locs) < 2 {
			delete(buckets, h)
			continue
		}
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	return &Index{buckets: buckets, hashes: hashes}
}

// Lookup returns all occurrences of a hash in insertion order, or nil when
// the hash was seen fewer than twice.
func (ix *Index) Lookup(hash uint64) []Location {
	return ix.buckets[hash]
}

// CollisionHashes returns the retained hashes in ascending order, giving
// deterministic iteration over collision buckets.
func (ix *Index) CollisionHashes() []uint64 {
	return ix.hashes
}

// Collisions returns the number of retained buckets.
func (ix *Index) Collisions() int {
	return len(ix.hashes)
}
