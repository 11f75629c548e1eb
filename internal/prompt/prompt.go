package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/media"
)

const rule = "---------------------------------------------"

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints "description [default]: " and reads a line, repeating until the
// answer validates. An empty answer, or end of input, yields def.
func (p *Prompter) Ask(description, def string, v Validator) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", description, def)

		line, err := p.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		eof := errors.Is(err, io.EOF)

		answer, verr := Validate(strings.TrimRight(line, "\r\n"), def, v)
		if verr == nil {
			if eof {
				fmt.Fprintln(p.out)
			}
			return answer, nil
		}
		if eof {
			fmt.Fprintln(p.out)
			return def, nil
		}
		fmt.Fprintln(p.out, "WARNING: Invalid input, please try again")
	}
}

// SelectTrack lists tracks under description and asks for a choice.
// The menu always offers -1 for the default. With no tracks it returns
// ffmpeg.ChoiceDefault without asking.
func (p *Prompter) SelectTrack(description string, tracks []media.Track, defaultChoice int) (int, error) {
	if len(tracks) == 0 {
		return ffmpeg.ChoiceDefault, nil
	}

	fmt.Fprintf(p.out, "\n%s\n%s\n", description, rule)
	fmt.Fprintln(p.out, "-1: default/none")
	for i, t := range tracks {
		fmt.Fprintf(p.out, " %d: %s\n", i, t)
	}

	answer, err := p.Ask("Selection", strconv.Itoa(defaultChoice), Selection)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(answer)
}

// Confirm asks a yes/no question defaulting to yes.
func (p *Prompter) Confirm(description string) (bool, error) {
	answer, err := p.Ask(description, "y", Any)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// Section prints a titled block.
func (p *Prompter) Section(title, body string) {
	fmt.Fprintf(p.out, "\n%s\n%s\n%s\n", title, rule, body)
}

// Println writes a line to the prompt output.
func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Progress redraws line in place, the way ffmpeg draws its own stats.
func (p *Prompter) Progress(line string) {
	fmt.Fprintf(p.out, "\r%s", line)
}

// Warn prints a WARNING line.
func (p *Prompter) Warn(format string, a ...any) {
	fmt.Fprintf(p.out, "WARNING: "+format+"\n", a...)
}
