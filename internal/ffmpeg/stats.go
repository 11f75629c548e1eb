package ffmpeg

import (
	"strconv"
	"strings"
)

// Stats is one -stats progress line, e.g.
//
//	frame=  250 fps= 25 q=-0.0 size=    1024kB time=00:00:10.00 bitrate= 838.9kbits/s speed=   1x
//
// Fields ffmpeg reports as N/A are left zero.
type Stats struct {
	Frame       int64
	FPS         float64
	SizeKB      int64
	Time        string
	BitrateKbps float64
	Speed       float64
}

// IsStatsLine reports whether line looks like -stats progress output.
func IsStatsLine(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "frame=") || strings.HasPrefix(line, "size=")
}

// ParseStats parses a -stats progress line.
func ParseStats(line string) (Stats, bool) {
	if !IsStatsLine(line) {
		return Stats{}, false
	}

	var s Stats
	for key, value := range statsFields(line) {
		switch key {
		case "frame":
			s.Frame, _ = strconv.ParseInt(value, 10, 64)
		case "fps":
			s.FPS, _ = strconv.ParseFloat(value, 64)
		case "size", "Lsize":
			s.SizeKB, _ = strconv.ParseInt(trimUnit(value, "kB", "KiB"), 10, 64)
		case "time":
			s.Time = value
		case "bitrate":
			s.BitrateKbps, _ = strconv.ParseFloat(trimUnit(value, "kbits/s"), 64)
		case "speed":
			s.Speed, _ = strconv.ParseFloat(trimUnit(value, "x"), 64)
		}
	}
	return s, true
}

// statsFields splits "key= value key=value" pairs. ffmpeg pads values with
// spaces after the '=', so a token ending in '=' takes the next token.
func statsFields(line string) map[string]string {
	fields := make(map[string]string)
	toks := strings.Fields(line)
	for i := 0; i < len(toks); i++ {
		key, value, ok := strings.Cut(toks[i], "=")
		if !ok {
			continue
		}
		if value == "" && i+1 < len(toks) && !strings.Contains(toks[i+1], "=") {
			i++
			value = toks[i]
		}
		fields[key] = value
	}
	return fields
}

func trimUnit(value string, units ...string) string {
	for _, u := range units {
		value = strings.TrimSuffix(value, u)
	}
	return value
}
