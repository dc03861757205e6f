package services

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"golang.org/x/crypto/sha3"
)

const (
	// selectionDrawBits is how many bits each index draw consumes from the
	// current hash word.
	selectionDrawBits = 25

	// selectionRehashInterval is how many draws are taken from one hash
	// word before the accumulator is rehashed. 10 draws x 25 bits fit in
	// a 256-bit word.
	selectionRehashInterval = 10
)

// SelectWinners deterministically picks k distinct indices in [0, n) from a
// 256-bit seed. It runs a partial Fisher-Yates shuffle over a sparse view of
// all n positions, so distinctness holds by construction. The result is
// sorted ascending; the first index is the grand winner.
func SelectWinners(seed [32]byte, n, k int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("winner count must be positive, got %d", k)
	}
	if n < k {
		return nil, models.ErrInsufficientEntries
	}

	h := sha3.Sum256(seed[:])
	result := make([]int, k)
	// displaced records positions moved by earlier swaps; untouched
	// positions implicitly hold their own index
	displaced := make(map[int]int, k)

	for i := 0; i < k; i++ {
		if i > 0 && i%selectionRehashInterval == 0 {
			h = sha3.Sum256(h[:])
		}
		draw := drawBits(h, (i%selectionRehashInterval)*selectionDrawBits)
		j := i + int(draw%uint64(n-i))

		vi, ok := displaced[i]
		if !ok {
			vi = i
		}
		vj, ok := displaced[j]
		if !ok {
			vj = j
		}
		result[i] = vj
		displaced[j] = vi
	}

	// invariant check; with the shuffle above this cannot fire
	seen := make(map[int]struct{}, k)
	for _, idx := range result {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("selected index %d out of range [0,%d)", idx, n)
		}
		if _, dup := seen[idx]; dup {
			return nil, fmt.Errorf("duplicate selected index %d", idx)
		}
		seen[idx] = struct{}{}
	}

	sort.Ints(result)
	return result, nil
}

// drawBits extracts selectionDrawBits bits from h starting at bitOffset,
// big-endian. Callers keep bitOffset + selectionDrawBits <= 256.
func drawBits(h [32]byte, bitOffset int) uint64 {
	byteIdx := bitOffset / 8
	shift := bitOffset % 8

	var v uint64
	for b := 0; b < 5; b++ {
		v <<= 8
		if byteIdx+b < len(h) {
			v |= uint64(h[byteIdx+b])
		}
	}
	v >>= 40 - shift - selectionDrawBits
	return v & ((1 << selectionDrawBits) - 1)
}

// DeriveValues expands one oracle seed into count independent-looking values
// (value_i = H(seed || i)), hex-encoded, so a single oracle round trip
// covers the whole draw.
func DeriveValues(seed [32]byte, count int) []string {
	values := make([]string, count)
	buf := make([]byte, len(seed)+8)
	copy(buf, seed[:])
	for i := 0; i < count; i++ {
		binary.BigEndian.PutUint64(buf[len(seed):], uint64(i))
		sum := sha3.Sum256(buf)
		values[i] = hex.EncodeToString(sum[:])
	}
	return values
}

// ParseSeed decodes a 32-byte hex seed
func ParseSeed(seedHex string) ([32]byte, error) {
	var seed [32]byte
	raw, err := hex.DecodeString(seedHex)
	if err != nil || len(raw) != len(seed) {
		return seed, models.ErrInvalidSeed
	}
	copy(seed[:], raw)
	return seed, nil
}
