package cast

import (
	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/icecast"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/timestamp"
)

// Subtitle modes, used as the metrics label and in events.
const (
	SubtitleNone   = "none"
	SubtitleText   = "text"
	SubtitleBitmap = "bitmap"
)

// Choices are the answers that turn a probed file into an ffmpeg request.
// Track choices are positions within the descriptor's per-kind lists, with
// ffmpeg.ChoiceDefault picking the first video and audio track and no
// subtitle.
type Choices struct {
	AudioBitrate    string
	VideoBitrate    string
	ResolutionScale string
	Seek            timestamp.Timestamp
	Ingest          icecast.Target

	Video    int
	Audio    int
	Subtitle int
}

// DefaultChoices returns Choices with every track on ChoiceDefault.
func DefaultChoices() Choices {
	return Choices{
		Video:    ffmpeg.ChoiceDefault,
		Audio:    ffmpeg.ChoiceDefault,
		Subtitle: ffmpeg.ChoiceDefault,
	}
}

// BuildRequest resolves c against desc. Out-of-range choices fail with
// ffmpeg.ErrSelectionOutOfRange. A file without video or audio yields a
// request that ffmpeg.BuildArgs rejects with ffmpeg.ErrTrackRequired.
func BuildRequest(desc *media.Descriptor, c Choices) (*ffmpeg.Request, error) {
	video, _, err := ffmpeg.SelectTrack(desc.Video, c.Video, ffmpeg.FallbackFirst)
	if err != nil {
		return nil, err
	}
	audio, _, err := ffmpeg.SelectTrack(desc.Audio, c.Audio, ffmpeg.FallbackFirst)
	if err != nil {
		return nil, err
	}
	sub, err := ffmpeg.SelectSubtitle(desc.Subtitles, c.Subtitle)
	if err != nil {
		return nil, err
	}

	return &ffmpeg.Request{
		AudioBitrate:    c.AudioBitrate,
		VideoBitrate:    c.VideoBitrate,
		ResolutionScale: c.ResolutionScale,
		Seek:            c.Seek,
		Ingest:          c.Ingest,
		Video:           video,
		Audio:           audio,
		Subtitle:        sub,
	}, nil
}

// SubtitleMode reports how req burns in subtitles.
func SubtitleMode(req *ffmpeg.Request) string {
	t, ok := req.Subtitle.Get()
	switch {
	case !ok:
		return SubtitleNone
	case ffmpeg.IsBitmapSubtitle(t.CodecName):
		return SubtitleBitmap
	default:
		return SubtitleText
	}
}
