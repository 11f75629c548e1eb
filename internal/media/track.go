package media

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a track.
type Kind string

// Track kinds as reported in ffprobe's codec_type.
const (
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindSubtitle Kind = "subtitle"
)

// ParseKind maps an ffprobe codec_type to a Kind. Types ffmcast does not
// stream (data, attachment) report false.
func ParseKind(codecType string) (Kind, bool) {
	switch Kind(codecType) {
	case KindAudio, KindVideo, KindSubtitle:
		return Kind(codecType), true
	}
	return "", false
}

// Track is one stream of a media file.
type Track struct {
	Index     int               `json:"index" doc:"File-wide stream index"`
	CodecName string            `json:"codec_name" doc:"Codec name, e.g. h264, subrip"`
	Kind      Kind              `json:"kind" enum:"audio,video,subtitle" doc:"Track kind"`
	Tags      map[string]string `json:"tags,omitempty" doc:"Stream tags such as language and title"`
}

// IsZero reports whether t is the zero Track, i.e. nothing was selected.
func (t Track) IsZero() bool {
	return t.Kind == "" && t.CodecName == "" && t.Index == 0 && len(t.Tags) == 0
}

// String renders the track the way the selection menu lists it.
func (t Track) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "stream #%d: %s/%s", t.Index, t.Kind, t.CodecName)

	keys := make([]string, 0, len(t.Tags))
	for k := range t.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n\tTAG: %s: %s", k, t.Tags[k])
	}
	return b.String()
}
