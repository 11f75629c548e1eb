package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smazurov/ffmcast/internal/media"
)

// videoOutLabel names the filter graph output when subtitles are overlaid.
const videoOutLabel = "[v]"

// Picture-based subtitle codecs, from https://wiki.videolan.org/Subtitles/
// and `ffmpeg -codecs | grep '^ ..S'`. These need the overlay filter; text
// codecs are rendered by the subtitles filter.
var bitmapSubtitleCodecs = []string{
	"dvd_subtitle",
	"dvb_subtitle",
	"dvb_teletext",
	"hdmv_pgs_subtitle",
}

// Filter argument escaping, applied in order. Each pass must only see the
// characters the previous passes left alone.
var filterArgEscapes = []*strings.Replacer{
	strings.NewReplacer(
		"‘", `\‘`,
		"[", `\[`,
		"]", `\]`,
		"=", `\=`,
		";", `\;`,
		",", `\,`,
		"’", `\’`,
		"`", "\\`",
	),
	strings.NewReplacer(":", `\\:`),
	strings.NewReplacer("'", `\\\'`),
}

// Graph is the -filter_complex chain plus the stream mappings that go with it.
type Graph struct {
	Filters  []string
	AudioMap string
	VideoMap string
}

// String joins the filter stages into a single -filter_complex expression.
func (g Graph) String() string {
	return strings.Join(g.Filters, ",")
}

// IsBitmapSubtitle reports whether codec is a picture-based subtitle format.
func IsBitmapSubtitle(codec string) bool {
	codec = strings.ToLower(codec)
	for _, c := range bitmapSubtitleCodecs {
		if strings.Contains(codec, c) {
			return true
		}
	}
	return false
}

// EscapeFilterArg escapes s for use as a value inside a filter argument,
// see the "Notes on filtergraph escaping" section of ffmpeg-filters(1).
func EscapeFilterArg(s string) string {
	for _, r := range filterArgEscapes {
		s = r.Replace(s)
	}
	return s
}

// BuildFilterGraph computes the stream maps and filter chain for req.
func BuildFilterGraph(req *Request, desc *media.Descriptor) (Graph, error) {
	if err := checkTracks(req); err != nil {
		return Graph{}, err
	}

	g := Graph{
		AudioMap: streamMap(req.Audio),
		VideoMap: streamMap(req.Video),
		Filters:  []string{"scale=" + req.ResolutionScale},
	}

	sub, ok := req.Subtitle.Get()
	if !ok {
		return g, nil
	}

	// ffmpeg filters address subtitles by position among subtitle streams,
	// not by the file-wide stream index ffprobe reports.
	filterIdx, found := desc.SubtitlePosition(sub.Index)
	if !found {
		return Graph{}, &BuildError{
			Op:  "subtitle",
			Err: fmt.Errorf("%w: stream #%d (%s)", ErrSubtitleNotFound, sub.Index, sub.CodecName),
		}
	}

	if IsBitmapSubtitle(sub.CodecName) {
		overlay := fmt.Sprintf("[0:v][0:s:%d]overlay", filterIdx)
		g.Filters = append([]string{overlay}, g.Filters...)
		g.Filters[len(g.Filters)-1] += videoOutLabel
		g.VideoMap = videoOutLabel
		return g, nil
	}

	// The setpts pair realigns the subtitles filter with the input after a
	// seek, see https://trac.ffmpeg.org/ticket/2067#comment:15
	g.Filters = append(g.Filters,
		fmt.Sprintf("setpts=PTS+%d/TB", req.Seek.Seconds()),
		fmt.Sprintf("subtitles=%s:si=%d", EscapeFilterArg(desc.Filename), filterIdx),
		"setpts=PTS-STARTPTS",
	)
	return g, nil
}

func checkTracks(req *Request) error {
	if req.Video.Kind != media.KindVideo {
		return &BuildError{Op: "map", Err: fmt.Errorf("%w: video", ErrTrackRequired)}
	}
	if req.Audio.Kind != media.KindAudio {
		return &BuildError{Op: "map", Err: fmt.Errorf("%w: audio", ErrTrackRequired)}
	}
	return nil
}

func streamMap(t media.Track) string {
	return "0:" + strconv.Itoa(t.Index)
}
