package overlay

import "image/color"

// Palette is the base from which per-position channel values are derived,
// applied to R, G and B respectively.
var Palette = [3]uint64{1<<11 - 1, 1<<15 - 1, 1<<20 - 1}

// ColorMap assigns one color to each track identifier. It is built once per
// run and not modified afterwards.
type ColorMap map[int]color.RGBA

// ColorAt returns the color for the i-th identifier in enumeration order:
// each channel is (p * ((i+1)^5 - i + 1)) mod 255 for palette component p.
// The product is reduced modulo 255 at every step, so any non-negative
// position gives the same result as exact integer arithmetic.
func ColorAt(i int) color.RGBA {
	if i < 0 {
		i = 0
	}
	n := uint64(i)
	k := (n + 1) % 255
	pow5 := k * k % 255 * k % 255 * k % 255 * k % 255
	factor := (pow5 + 255 - n%255 + 1) % 255

	channel := func(p uint64) uint8 {
		return uint8(p % 255 * factor % 255)
	}
	return color.RGBA{
		R: channel(Palette[0]),
		G: channel(Palette[1]),
		B: channel(Palette[2]),
		A: 255,
	}
}

// AssignColors maps each identifier to the color of its position in ids.
// Colors depend on position only, so the same set enumerated in a different
// order yields different colors. A repeated identifier keeps the position of
// its first occurrence. Empty input yields an empty map.
func AssignColors(ids []int) ColorMap {
	colors := make(ColorMap, len(ids))
	pos := 0
	for _, id := range ids {
		if _, ok := colors[id]; ok {
			continue
		}
		colors[id] = ColorAt(pos)
		pos++
	}
	return colors
}
