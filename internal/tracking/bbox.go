package tracking

import (
	"fmt"
	"sort"
)

// TrackingBbox is one tracked object instance in one frame.
// Coordinates are pixels; Left < Right and Top < Bottom is expected but
// not enforced.
type TrackingBbox struct {
	FrameID int     `json:"frame_id" cbor:"frame_id"`
	TrackID int     `json:"track_id" cbor:"track_id"`
	Left    float64 `json:"left" cbor:"left"`
	Top     float64 `json:"top" cbor:"top"`
	Right   float64 `json:"right" cbor:"right"`
	Bottom  float64 `json:"bottom" cbor:"bottom"`
}

// Width returns Right-Left.
func (b TrackingBbox) Width() float64 { return b.Right - b.Left }

// Height returns Bottom-Top.
func (b TrackingBbox) Height() float64 { return b.Bottom - b.Top }

func (b TrackingBbox) String() string {
	return fmt.Sprintf("frame=%d track=%d [%.1f,%.1f,%.1f,%.1f]",
		b.FrameID, b.TrackID, b.Left, b.Top, b.Right, b.Bottom)
}

// IDOrder selects how distinct track identifiers are enumerated before
// colors are derived from their positions.
type IDOrder string

const (
	// OrderAscending enumerates identifiers by increasing value.
	OrderAscending IDOrder = "ascending"
	// OrderFirstSeen enumerates identifiers by first appearance, walking
	// frames in ascending order and boxes in sequence order.
	OrderFirstSeen IDOrder = "first-seen"
)

// ParseIDOrder validates an order name. Empty selects OrderAscending.
func ParseIDOrder(s string) (IDOrder, error) {
	switch IDOrder(s) {
	case "", OrderAscending:
		return OrderAscending, nil
	case OrderFirstSeen:
		return OrderFirstSeen, nil
	default:
		return "", fmt.Errorf("unknown id order %q (want %q or %q)", s, OrderAscending, OrderFirstSeen)
	}
}

// Results maps a zero-based frame index to the boxes of that frame, in the
// order the tracker emitted them.
type Results map[int][]TrackingBbox

// NewResults groups boxes by FrameID, preserving their relative order.
func NewResults(boxes []TrackingBbox) Results {
	res := make(Results)
	for _, bb := range boxes {
		res[bb.FrameID] = append(res[bb.FrameID], bb)
	}
	return res
}

// FrameIDs returns the frame indices present, ascending.
func (r Results) FrameIDs() []int {
	ids := make([]int, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Boxes returns the boxes of a frame. A missing frame yields nil.
func (r Results) Boxes(frame int) []TrackingBbox {
	return r[frame]
}

// Len returns the total number of boxes across all frames.
func (r Results) Len() int {
	n := 0
	for _, boxes := range r {
		n += len(boxes)
	}
	return n
}

// TrackIDs returns every distinct track identifier, enumerated by order.
// Unknown orders fall back to OrderAscending.
func (r Results) TrackIDs(order IDOrder) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, frame := range r.FrameIDs() {
		for _, bb := range r[frame] {
			if _, ok := seen[bb.TrackID]; ok {
				continue
			}
			seen[bb.TrackID] = struct{}{}
			ids = append(ids, bb.TrackID)
		}
	}
	if order != OrderFirstSeen {
		sort.Ints(ids)
	}
	return ids
}

// TrackLengths returns, per track identifier, the number of distinct frames
// the track appears in.
func (r Results) TrackLengths() map[int]int {
	lengths := make(map[int]int)
	for _, boxes := range r {
		inFrame := make(map[int]struct{}, len(boxes))
		for _, bb := range boxes {
			if _, ok := inFrame[bb.TrackID]; ok {
				continue
			}
			inFrame[bb.TrackID] = struct{}{}
			lengths[bb.TrackID]++
		}
	}
	return lengths
}

// Flatten returns all boxes, frames ascending, each frame in sequence order.
func (r Results) Flatten() []TrackingBbox {
	out := make([]TrackingBbox, 0, r.Len())
	for _, frame := range r.FrameIDs() {
		out = append(out, r[frame]...)
	}
	return out
}
