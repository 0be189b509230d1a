package pathformat

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPathComponent = errors.New("invalid path component")

// characters which are either illegal or a separator on at least one common filesystem
var componentReplacer = strings.NewReplacer(
	"\x00", "",
	`<`, "",
	`>`, "",
	`:`, "",
	`"`, "",
	`\`, "",
	`|`, "",
	`?`, "",
	`*`, "",
	`/`, "_",
)

// Sanitize makes s usable as a single portable path component. The forbidden
// characters < > : " \ | ? * are removed, / becomes _, and trailing spaces and
// periods are trimmed. If nothing is left it returns ErrInvalidPathComponent.
//
//	Untitled / Footloose -> Untitled _ Footloose
//	Untitled.            -> Untitled
func Sanitize(s string) (string, error) {
	r := componentReplacer.Replace(s)
	r = strings.TrimRight(r, " .")
	if r == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPathComponent, s)
	}
	return r, nil
}
