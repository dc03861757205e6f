package services

import (
	"testing"

	"github.com/lottoworks/luckydraw-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed(b byte) [32]byte {
	var seed [32]byte
	for i := range seed {
		seed[i] = b
	}
	return seed
}

func TestSelectWinners(t *testing.T) {
	t.Run("deterministic for the same seed", func(t *testing.T) {
		seed := testSeed(0x42)
		first, err := SelectWinners(seed, 1000, 10)
		require.NoError(t, err)
		second, err := SelectWinners(seed, 1000, 10)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("different seeds give different winners", func(t *testing.T) {
		first, err := SelectWinners(testSeed(0x01), 1000, 10)
		require.NoError(t, err)
		second, err := SelectWinners(testSeed(0x02), 1000, 10)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("sorted distinct and in range", func(t *testing.T) {
		cases := []struct{ n, k int }{
			{10, 10},
			{11, 10},
			{100, 10},
			{1000, 10},
			{1 << 20, 10},
			{50, 25},
		}
		for _, tc := range cases {
			winners, err := SelectWinners(testSeed(0x7f), tc.n, tc.k)
			require.NoError(t, err)
			require.Len(t, winners, tc.k)

			seen := make(map[int]bool)
			for i, idx := range winners {
				assert.GreaterOrEqual(t, idx, 0)
				assert.Less(t, idx, tc.n)
				assert.False(t, seen[idx], "duplicate index %d for n=%d k=%d", idx, tc.n, tc.k)
				seen[idx] = true
				if i > 0 {
					assert.Greater(t, idx, winners[i-1], "not sorted for n=%d k=%d", tc.n, tc.k)
				}
			}
		}
	})

	t.Run("n equal to k selects everyone", func(t *testing.T) {
		winners, err := SelectWinners(testSeed(0x33), 10, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, winners)
	})

	t.Run("too few entries", func(t *testing.T) {
		_, err := SelectWinners(testSeed(0x01), 9, 10)
		assert.ErrorIs(t, err, models.ErrInsufficientEntries)
	})

	t.Run("non-positive winner count", func(t *testing.T) {
		_, err := SelectWinners(testSeed(0x01), 100, 0)
		assert.Error(t, err)
	})
}

func TestDrawBits(t *testing.T) {
	t.Run("reads the top bit at offset zero", func(t *testing.T) {
		var h [32]byte
		h[0] = 0x80
		assert.Equal(t, uint64(1)<<24, drawBits(h, 0))
	})

	t.Run("stays within 25 bits", func(t *testing.T) {
		h := testSeed(0xff)
		for offset := 0; offset+selectionDrawBits <= 256; offset += selectionDrawBits {
			v := drawBits(h, offset)
			assert.Less(t, v, uint64(1)<<selectionDrawBits)
		}
	})

	t.Run("consecutive offsets partition the word", func(t *testing.T) {
		var h [32]byte
		for i := range h {
			h[i] = byte(i * 37)
		}
		// reassemble the first 250 bits from the 10 draws and compare
		// against the raw bytes bit by bit
		for slot := 0; slot < 10; slot++ {
			v := drawBits(h, slot*selectionDrawBits)
			for bit := 0; bit < selectionDrawBits; bit++ {
				abs := slot*selectionDrawBits + bit
				want := (h[abs/8] >> (7 - abs%8)) & 1
				got := byte((v >> (selectionDrawBits - 1 - bit)) & 1)
				require.Equal(t, want, got, "bit %d", abs)
			}
		}
	})
}

func TestDeriveValues(t *testing.T) {
	seed := testSeed(0x5a)

	values := DeriveValues(seed, 10)
	require.Len(t, values, 10)

	again := DeriveValues(seed, 10)
	assert.Equal(t, values, again)

	seen := make(map[string]bool)
	for _, v := range values {
		assert.Len(t, v, 64)
		assert.False(t, seen[v], "derived values must be distinct")
		seen[v] = true
	}
}

func TestParseSeed(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		seed, err := ParseSeed("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
		require.NoError(t, err)
		assert.Equal(t, byte(0x00), seed[0])
		assert.Equal(t, byte(0x1f), seed[31])
	})

	t.Run("not hex", func(t *testing.T) {
		_, err := ParseSeed("zz")
		assert.ErrorIs(t, err, models.ErrInvalidSeed)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := ParseSeed("deadbeef")
		assert.ErrorIs(t, err, models.ErrInvalidSeed)
	})
}
