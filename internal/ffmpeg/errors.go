package ffmpeg

import (
	"errors"
	"fmt"
)

// Build failures. Wrapped in *BuildError; match with errors.Is.
var (
	ErrTrackRequired       = errors.New("track selection required")
	ErrSubtitleNotFound    = errors.New("subtitle track not found in media descriptor")
	ErrSelectionOutOfRange = errors.New("selection out of range")
)

// BuildError reports which step of command construction failed.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("ffmpeg %s: %v", e.Op, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
