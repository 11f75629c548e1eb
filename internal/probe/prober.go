// Package probe reads a media file's stream layout with ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/timestamp"
)

// Binary is the ffprobe executable.
const Binary = "ffprobe"

// Args returns the ffprobe argument vector, argv[0] included, for path.
func Args(path string) []string {
	return []string{Binary, "-hide_banner", "-loglevel", "0", "-of", "json", "-show_streams", "-show_format", path}
}

// Prober probes media files. Probe satisfies it.
type Prober func(ctx context.Context, path string) (*media.Descriptor, error)

// Probe runs ffprobe against path and returns its stream layout.
func Probe(ctx context.Context, path string) (*media.Descriptor, error) {
	args := Args(path)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseJSON(path, out)
}

// ParseJSON converts ffprobe JSON output into a Descriptor for filename.
// Exported for testing without a real ffprobe binary.
func ParseJSON(filename string, data []byte) (*media.Descriptor, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	tracks := make([]media.Track, 0, len(raw.Streams))
	for _, s := range raw.Streams {
		kind, ok := media.ParseKind(s.CodecType)
		if !ok {
			continue
		}
		tracks = append(tracks, media.Track{
			Index:     s.Index,
			CodecName: s.CodecName,
			Kind:      kind,
			Tags:      s.Tags,
		})
	}

	return media.NewDescriptor(filename, parseDuration(raw.Format.Duration), tracks), nil
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
}

// parseDuration truncates ffprobe's fractional duration to whole seconds.
// Live or broken inputs report no duration; those become zero.
func parseDuration(s string) timestamp.Timestamp {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return timestamp.FromSeconds(int(f))
}
