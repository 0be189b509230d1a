// Package dirparse splits the names of downloaded release directories into a
// search title and the bracketed tags that usually trail it, e.g.
//
//	Hodge & Acre - X _ Don't Get Me Started [2015] [EP]
//
// Tags are informational. Nothing filters or matches on them.
package dirparse

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var tagExpr = regexp.MustCompile(`\[[\p{L}\p{N}_]+\]`)

// Split returns the text before the first bracketed tag as the search title,
// and every tag from there on without its brackets. With no tags the whole
// name is the title.
func Split(name string) (title string, tags []string) {
	name = norm.NFC.String(name)

	loc := tagExpr.FindStringIndex(name)
	if loc == nil {
		return strings.TrimSpace(name), nil
	}
	for _, m := range tagExpr.FindAllString(name[loc[0]:], -1) {
		tags = append(tags, m[1:len(m)-1])
	}
	return strings.TrimSpace(name[:loc[0]]), tags
}
