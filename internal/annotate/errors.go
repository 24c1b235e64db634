package annotate

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource means the input opened but yielded no frames.
	ErrEmptySource = errors.New("input video has no frames")
	// ErrFrameMisaligned means the source reported a frame index other than
	// the one the pipeline expected, so results would be drawn on the wrong
	// picture.
	ErrFrameMisaligned = errors.New("frame index does not match decode position")
)

// OpenError reports that the input could not be read or the output could not
// be created. No frame has been written when it is returned.
type OpenError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// DecodeError reports a failure to decode the frame at position Frame.
type DecodeError struct {
	Frame int
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame %d: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports that the output refused the frame at position Frame.
type WriteError struct {
	Frame int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write frame %d: %v", e.Frame, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
