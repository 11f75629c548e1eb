package media

import "github.com/smazurov/ffmcast/internal/timestamp"

// Descriptor is the probed layout of one media file.
type Descriptor struct {
	Filename  string              `json:"filename"`
	Duration  timestamp.Timestamp `json:"duration" doc:"Duration in whole seconds"`
	Audio     []Track             `json:"audio"`
	Video     []Track             `json:"video"`
	Subtitles []Track             `json:"subtitles"`
}

// NewDescriptor partitions tracks by kind, keeping probe order within each
// kind. Tracks of other kinds are dropped.
func NewDescriptor(filename string, duration timestamp.Timestamp, tracks []Track) *Descriptor {
	d := &Descriptor{
		Filename: filename,
		Duration: duration,
	}
	for _, t := range tracks {
		switch t.Kind {
		case KindAudio:
			d.Audio = append(d.Audio, t)
		case KindVideo:
			d.Video = append(d.Video, t)
		case KindSubtitle:
			d.Subtitles = append(d.Subtitles, t)
		}
	}
	return d
}

// SubtitlePosition returns the 0-based position of the subtitle track with
// the given stream index. ffmpeg addresses subtitles in filters (0:s:N, si=N)
// by this position, not by stream index.
func (d *Descriptor) SubtitlePosition(index int) (int, bool) {
	for i, t := range d.Subtitles {
		if t.Index == index {
			return i, true
		}
	}
	return -1, false
}
