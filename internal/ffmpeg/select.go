package ffmpeg

import (
	"fmt"

	"github.com/smazurov/ffmcast/internal/media"
)

// ChoiceDefault is the menu entry that picks the fallback.
const ChoiceDefault = -1

// Fallback is what ChoiceDefault resolves to.
type Fallback int

const (
	// FallbackNone selects nothing. Used for subtitles.
	FallbackNone Fallback = iota
	// FallbackFirst selects the first candidate. Used for audio and video.
	FallbackFirst
)

// SelectTrack resolves a menu choice against candidates. It returns false
// when nothing is selected, which only happens for FallbackNone or for
// ChoiceDefault on an empty candidate list.
func SelectTrack(candidates []media.Track, choice int, fallback Fallback) (media.Track, bool, error) {
	switch {
	case choice == ChoiceDefault && len(candidates) == 0:
		return media.Track{}, false, nil
	case choice == ChoiceDefault:
		if fallback == FallbackFirst {
			return candidates[0], true, nil
		}
		return media.Track{}, false, nil
	case choice >= 0 && choice < len(candidates):
		return candidates[choice], true, nil
	default:
		return media.Track{}, false, &BuildError{
			Op:  "select",
			Err: fmt.Errorf("%w: %d not in [-1, %d]", ErrSelectionOutOfRange, choice, len(candidates)-1),
		}
	}
}

// SelectSubtitle is SelectTrack with FallbackNone, wrapped as a Subtitle.
func SelectSubtitle(candidates []media.Track, choice int) (Subtitle, error) {
	t, ok, err := SelectTrack(candidates, choice, FallbackNone)
	if err != nil || !ok {
		return NoSubtitle(), err
	}
	return WithSubtitle(t), nil
}
