package ffmpeg

import "strings"

// ParseLogLevel extracts a log level from a line of ffmpeg stderr.
//
// With the "level" loglevel flag ffmpeg prefixes lines with "[level]" or
// "[component @ 0x...] [level]"; the level is stripped and the component
// kept. Unprefixed lines are classified by content: -stats progress lines
// are debug, lines mentioning an error are error, anything else is info.
func ParseLogLevel(line string) (level, msg string) {
	if len(line) >= 3 && line[0] == '[' {
		if end := strings.Index(line, "] "); end != -1 {
			if bracket := line[1:end]; isLogLevel(bracket) {
				return bracket, line[end+2:]
			}

			component := line[:end+2]
			rest := line[end+2:]
			if len(rest) > 2 && rest[0] == '[' {
				if nextEnd := strings.Index(rest, "] "); nextEnd != -1 {
					if nextBracket := rest[1:nextEnd]; isLogLevel(nextBracket) {
						return nextBracket, component + rest[nextEnd+2:]
					}
				}
			}
		}
	}

	return classifyUnprefixed(line), line
}

func classifyUnprefixed(line string) string {
	switch {
	case IsStatsLine(line):
		return "debug"
	case strings.Contains(strings.ToLower(line), "error"):
		return "error"
	default:
		return "info"
	}
}

func isLogLevel(s string) bool {
	switch s {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return true
	}
	return false
}
