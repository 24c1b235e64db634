package overlay

import (
	"image/color"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exactChannel evaluates (p * ((i+1)^5 - i + 1)) mod 255 without reduction.
func exactChannel(p uint64, i int64) uint8 {
	n := big.NewInt(i + 1)
	n.Exp(n, big.NewInt(5), nil)
	n.Sub(n, big.NewInt(i))
	n.Add(n, big.NewInt(1))
	n.Mul(n, new(big.Int).SetUint64(p))
	n.Mod(n, big.NewInt(255))
	return uint8(n.Int64())
}

func TestColorAtKnownPositions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, color.RGBA{R: 14, G: 254, B: 30, A: 255}, ColorAt(0))
	assert.Equal(t, color.RGBA{R: 224, G: 239, B: 225, A: 255}, ColorAt(1))
}

func TestColorAtMatchesExactArithmetic(t *testing.T) {
	t.Parallel()

	positions := []int64{0, 1, 2, 3, 254, 255, 256, 1000, 6000, 100000, 1 << 40}
	for i := int64(0); i < 600; i++ {
		positions = append(positions, i)
	}
	for _, i := range positions {
		got := ColorAt(int(i))
		want := color.RGBA{
			R: exactChannel(Palette[0], i),
			G: exactChannel(Palette[1], i),
			B: exactChannel(Palette[2], i),
			A: 255,
		}
		require.Equal(t, want, got, "position %d", i)
	}
}

func TestAssignColors(t *testing.T) {
	t.Parallel()

	t.Run("one entry per identifier", func(t *testing.T) {
		t.Parallel()
		ids := []int{42, 7, 19, 3}
		colors := AssignColors(ids)
		require.Len(t, colors, len(ids))
		for pos, id := range ids {
			assert.Equal(t, ColorAt(pos), colors[id], "id %d", id)
		}
		_, ok := colors[8]
		assert.False(t, ok)
	})

	t.Run("position not value", func(t *testing.T) {
		t.Parallel()
		colors := AssignColors([]int{5, 9})
		assert.Equal(t, color.RGBA{R: 14, G: 254, B: 30, A: 255}, colors[5])

		reordered := AssignColors([]int{9, 5})
		assert.Equal(t, colors[5], reordered[9])
		assert.NotEqual(t, colors[5], reordered[5])
	})

	t.Run("same order same colors", func(t *testing.T) {
		t.Parallel()
		ids := []int{1, 2, 3, 100}
		if diff := cmp.Diff(AssignColors(ids), AssignColors(ids)); diff != "" {
			t.Errorf("colors differ between calls:\n%s", diff)
		}
	})

	t.Run("duplicates keep first position", func(t *testing.T) {
		t.Parallel()
		colors := AssignColors([]int{4, 6, 4, 8})
		require.Len(t, colors, 3)
		assert.Equal(t, ColorAt(0), colors[4])
		assert.Equal(t, ColorAt(1), colors[6])
		assert.Equal(t, ColorAt(2), colors[8])
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, AssignColors(nil))
		assert.NotNil(t, AssignColors(nil))
	})
}

func TestColorAtRepeats(t *testing.T) {
	// The factor (i+1)^5 - i + 1 takes few distinct values modulo 255, so
	// colors recur. Position 3 has the same factor as position 0.
	assert.Equal(t, ColorAt(0), ColorAt(3))
	assert.NotEqual(t, ColorAt(0), ColorAt(1))
	assert.NotEqual(t, ColorAt(1), ColorAt(2))
}
