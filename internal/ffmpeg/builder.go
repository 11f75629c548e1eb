package ffmpeg

import (
	"strings"

	"github.com/smazurov/ffmcast/internal/media"
)

// Binary is the transcoder executable placed in argv[0].
const Binary = "ffmpeg"

// BuildArgs builds the full ffmpeg argument vector, argv[0] included, that
// streams desc to req.Ingest as Ogg Theora/Vorbis. The argument order is
// fixed.
func BuildArgs(req *Request, desc *media.Descriptor) ([]string, error) {
	g, err := BuildFilterGraph(req, desc)
	if err != nil {
		return nil, err
	}

	args := []string{Binary,
		"-loglevel", "+warning", "-hide_banner", "-stats",
		"-probesize", "50M", "-analyzeduration", "100M",
		"-re", "-accurate_seek", "-seek_timestamp", "1", "-ss", req.Seek.String(),
		"-i", desc.Filename,
		"-g", "50", "-bufsize", "6000k",
		"-f", "ogg", "-content_type", "application/ogg",
	}

	// Audio
	args = append(args, "-map", g.AudioMap, "-codec:a", "libvorbis", "-b:a", req.AudioBitrate)

	// Video, possibly through the subtitle overlay
	args = append(args, "-filter_complex", g.String(), "-map", g.VideoMap)
	args = append(args, "-codec:v", "libtheora", "-b:v", req.VideoBitrate)

	return append(args, req.Ingest.IngestURL()), nil
}

// CommandLine renders args for display. Arguments containing whitespace or
// shell quoting characters are single-quoted.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return "''"
	}
	if !strings.ContainsAny(a, " \t\n'\"\\$`") {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}
