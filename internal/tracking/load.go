package tracking

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// LoadOptions controls how result files are interpreted.
type LoadOptions struct {
	// MOTOneBased treats frame numbers in MOT files as starting at 1, which
	// is the MOT challenge convention. They are shifted to zero-based.
	MOTOneBased bool
}

// DefaultLoadOptions matches the MOT challenge convention.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{MOTOneBased: true}
}

// ErrUnsupportedFormat is returned for result files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported results format")

// LoadResults reads a results file, choosing the format by extension:
// .txt and .csv are MOT text, .json is a JSON array of boxes and .cbor is a
// CBOR array of boxes.
func LoadResults(path string, opts LoadOptions) (Results, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	var boxes []TrackingBbox
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".csv":
		boxes, err = ReadMOT(f, opts.MOTOneBased)
	case ".json":
		boxes, err = ReadJSON(f)
	case ".cbor":
		boxes, err = ReadCBOR(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return NewResults(boxes), nil
}

// ReadMOT parses MOT challenge rows: frame,id,left,top,width,height[,...].
// Extra columns (confidence, world coordinates) are ignored.
func ReadMOT(r io.Reader, oneBased bool) ([]TrackingBbox, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var boxes []TrackingBbox
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: expected at least 6 fields, got %d", line, len(rec))
		}

		var vals [6]float64
		for i := range vals {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d field %d: %w", line, i+1, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("line %d field %d: value %s is not finite", line, i+1, rec[i])
			}
			// frame and id
			if i < 2 && v != math.Trunc(v) {
				return nil, fmt.Errorf("line %d field %d: value %s is not an integer", line, i+1, rec[i])
			}
			vals[i] = v
		}

		frame := int(vals[0])
		if oneBased {
			frame--
		}
		if frame < 0 {
			return nil, fmt.Errorf("line %d: negative frame index %d", line, frame)
		}
		boxes = append(boxes, TrackingBbox{
			FrameID: frame,
			TrackID: int(vals[1]),
			Left:    vals[2],
			Top:     vals[3],
			Right:   vals[2] + vals[4],
			Bottom:  vals[3] + vals[5],
		})
	}
	return boxes, nil
}

// WriteMOT writes results as MOT rows with confidence 1 and unset world
// coordinates, frames ascending.
func WriteMOT(w io.Writer, res Results, oneBased bool) error {
	bw := bufio.NewWriter(w)
	for _, bb := range res.Flatten() {
		frame := bb.FrameID
		if oneBased {
			frame++
		}
		if _, err := fmt.Fprintf(bw, "%d,%d,%s,%s,%s,%s,1,-1,-1,-1\n",
			frame, bb.TrackID,
			formatCoord(bb.Left), formatCoord(bb.Top),
			formatCoord(bb.Width()), formatCoord(bb.Height())); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadJSON decodes a JSON array of boxes.
func ReadJSON(r io.Reader) ([]TrackingBbox, error) {
	var boxes []TrackingBbox
	if err := json.NewDecoder(r).Decode(&boxes); err != nil {
		return nil, err
	}
	return boxes, validateFrames(boxes)
}

// ReadCBOR decodes a CBOR array of boxes.
func ReadCBOR(r io.Reader) ([]TrackingBbox, error) {
	var boxes []TrackingBbox
	if err := cbor.NewDecoder(r).Decode(&boxes); err != nil {
		return nil, err
	}
	return boxes, validateFrames(boxes)
}

// WriteCBOR encodes results as a CBOR array of boxes, frames ascending.
func WriteCBOR(w io.Writer, res Results) error {
	return cbor.NewEncoder(w).Encode(res.Flatten())
}

func validateFrames(boxes []TrackingBbox) error {
	for i, bb := range boxes {
		if bb.FrameID < 0 {
			return fmt.Errorf("box %d: negative frame index %d", i, bb.FrameID)
		}
	}
	return nil
}
