package ffmpeg

import (
	"github.com/smazurov/ffmcast/internal/icecast"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/timestamp"
)

// Request is a complete set of transcode selections for one media file.
type Request struct {
	AudioBitrate    string // 128K
	VideoBitrate    string // 900K
	ResolutionScale string // 480:-1, passed to the scale filter as-is
	Seek            timestamp.Timestamp
	Ingest          icecast.Target

	Video    media.Track
	Audio    media.Track
	Subtitle Subtitle
}

// Subtitle is an optional subtitle track to burn into the video.
type Subtitle struct {
	track media.Track
	set   bool
}

// NoSubtitle streams the video without burned-in subtitles.
func NoSubtitle() Subtitle {
	return Subtitle{}
}

// WithSubtitle burns the given track into the video.
func WithSubtitle(t media.Track) Subtitle {
	return Subtitle{track: t, set: true}
}

// Get returns the selected track and whether one was selected.
func (s Subtitle) Get() (media.Track, bool) {
	return s.track, s.set
}
