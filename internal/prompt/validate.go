// Package prompt gathers validated answers from an operator.
//
// Validation is a pure function (Validate) so it can be used by the
// interactive Prompter and by non-interactive callers such as the HTTP API.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidInput is returned when input does not match its Validator.
var ErrInvalidInput = errors.New("invalid input")

// Validator is the pattern an answer must match.
type Validator struct {
	name string
	re   *regexp.Regexp
}

// NewValidator compiles pattern. It panics on an invalid pattern.
func NewValidator(name, pattern string) Validator {
	return Validator{name: name, re: regexp.MustCompile(pattern)}
}

// Name identifies the validator in error messages.
func (v Validator) Name() string {
	return v.name
}

// Match reports whether s is acceptable.
func (v Validator) Match(s string) bool {
	return v.re == nil || v.re.MatchString(s)
}

// Predefined validators.
var (
	Bitrate   = NewValidator("bitrate", `^[0-9]+[KMG](ib)?$`)
	Scale     = NewValidator("resolution scale", `^[-]?\d+:[-]?\d+$`)
	Seek      = NewValidator("seek time", `^(\d+?:)?(\d?\d:)?\d?\d$`)
	Auth      = NewValidator("icecast auth", `^.*?:.*?$`)
	Any       = NewValidator("value", `^.*$`)
	Selection = NewValidator("selection", `^([0-9]+|-1)$`)
)

// Validate returns def for empty input, input when it matches v, and
// ErrInvalidInput otherwise.
func Validate(input, def string, v Validator) (string, error) {
	if input == "" {
		return def, nil
	}
	if !v.Match(input) {
		return "", fmt.Errorf("%w: %q is not a valid %s", ErrInvalidInput, input, v.Name())
	}
	return input, nil
}
