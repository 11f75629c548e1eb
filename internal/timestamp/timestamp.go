// Package timestamp converts between a whole-second count and the
// HH:MM:SS form ffmpeg accepts for -ss.
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse errors.
var (
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrTooManyComponents = errors.New("timestamp has more than 3 components")
)

// maxComponents is hours:minutes:seconds.
const maxComponents = 3

// Timestamp is a non-negative number of whole seconds.
type Timestamp int

// FromSeconds returns a Timestamp for the given second count.
func FromSeconds(seconds int) Timestamp {
	return Timestamp(seconds)
}

// Seconds returns the total number of seconds.
func (t Timestamp) Seconds() int {
	return int(t)
}

// String renders the timestamp as HH:MM:SS. Hours are not truncated past two digits.
func (t Timestamp) String() string {
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

// Parse reads one to three colon-separated numbers. The rightmost is
// seconds, then minutes, then hours.
func Parse(text string) (Timestamp, error) {
	toks := strings.Split(strings.TrimSpace(text), ":")
	if len(toks) > maxComponents {
		return 0, fmt.Errorf("%w: %q", ErrTooManyComponents, text)
	}

	multipliers := [maxComponents]int{1, 60, 3600}
	total := 0
	for i := range toks {
		tok := toks[len(toks)-1-i]
		n, err := parseComponent(tok)
		if err != nil || n > (math.MaxInt-total)/multipliers[i] {
			return 0, fmt.Errorf("%w: component %q in %q", ErrInvalidTimestamp, tok, text)
		}
		total += n * multipliers[i]
	}
	return Timestamp(total), nil
}

// parseComponent accepts only plain decimal digits, so signs are rejected.
func parseComponent(tok string) (int, error) {
	if tok == "" || tok[0] == '+' || tok[0] == '-' {
		return 0, ErrInvalidTimestamp
	}
	n, err := strconv.ParseUint(tok, 10, strconv.IntSize-1)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
