// Package fingerprint computes k-gram hashes over normalized token streams
// and selects a winnowed subset of them as file fingerprints.
package fingerprint

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pastiche-dev/pastiche/internal/normalize"
)

// base is the odd multiplier for the polynomial rolling combination of
// per-token hashes. Arithmetic is modulo 2^64 via natural wraparound.
const base uint64 = 1099511628211

// Gram is the hash of k consecutive normalized tokens. Start and End are
// inclusive token indices into the source stream.
type Gram struct {
	Hash  uint64
	Start int
	End   int
}

// tokenHashes hashes each token's normalized text independently, prefixed
// with its length so that token boundaries stay unambiguous ("ab"+"c" and
// "a"+"bc" must not collide).
func tokenHashes(st *normalize.Stream) []uint64 {
	hashes := make([]uint64, st.Len())
	var d xxhash.Digest
	var lenBuf [4]byte
	for i := range st.Tokens {
		text := st.Tokens[i].Text
		d.Reset()
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(text)))
		d.Write(lenBuf[:])
		d.WriteString(text)
		hashes[i] = d.Sum64()
	}
	return hashes
}

// Grams computes the hash of every k-gram in the stream in a single O(n)
// pass: the first window is folded directly, each subsequent one rolls by
// removing the leading token hash and appending the next.
//
// Streams shorter than k tokens produce no grams; that is not an error.
func Grams(st *normalize.Stream, k int) []Gram {
	n := st.Len()
	if k <= 0 || n < k {
		return nil
	}

	th := tokenHashes(st)

	// base^(k-1), for removing the leading term when rolling.
	lead := uint64(1)
	for j := 0; j < k-1; j++ {
		lead *= base
	}

	var h uint64
	for j := 0; j < k; j++ {
		h = h*base + th[j]
	}

	grams := make([]Gram, 0, n-k+1)
	grams = append(grams, Gram{Hash: h, Start: 0, End: k - 1})
	for i := 1; i+k <= n; i++ {
		h = (h - th[i-1]*lead) * base
		h += th[i+k-1]
		grams = append(grams, Gram{Hash: h, Start: i, End: i + k - 1})
	}
	return grams
}
