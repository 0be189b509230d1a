package release

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"go.senan.xyz/nofuture/discogs"
)

var ErrIncomplete = errors.New("incomplete release")

// Release is the normalised form of a Discogs release which is used to build
// destination paths. Only the primary label is kept.
type Release struct {
	ID      int
	Title   string
	Year    int
	Label   string
	CatNo   string
	Artist  string
	Artists []string
}

func (r Release) String() string {
	return fmt.Sprintf("%s - %s (%d) [%s %s]", r.Artist, r.Title, r.Year, r.Label, r.CatNo)
}

func FromDiscogs(d *discogs.Release) (Release, error) {
	var r Release
	r.ID = d.ID
	r.Title = d.Title
	r.Year = d.Year
	if r.Year == 0 {
		r.Year = parseYear(d.Released)
	}

	if len(d.Labels) > 0 {
		r.Label = StripSuffix(d.Labels[0].Name)
		r.CatNo = d.Labels[0].CatNo
	}

	for _, a := range d.Artists {
		r.Artists = append(r.Artists, StripSuffix(a.Name))
	}
	r.Artist = strings.Join(r.Artists, ", ")

	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"label", r.Label},
		{"catalogue number", r.CatNo},
		{"artist", r.Artist},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if r.Year <= 0 {
		missing = append(missing, "year")
	}
	if len(missing) > 0 {
		return Release{}, fmt.Errorf("%w: release %d has no %s", ErrIncomplete, d.ID, strings.Join(missing, ", "))
	}

	return r, nil
}

// Discogs disambiguates names shared by different artists and labels with a
// numeric suffix, starting at 2. A bare "(1)" is left alone.
var suffixExpr = regexp.MustCompile(` \(([2-9]|[1-9][0-9]+)\)$`)

// StripSuffix removes a Discogs disambiguation suffix, "Klaus (25)" -> "Klaus".
func StripSuffix(name string) string {
	if loc := suffixExpr.FindStringIndex(name); loc != nil {
		return name[:loc[0]]
	}
	return name
}

func parseYear(released string) int {
	released = strings.TrimSpace(released)
	if released == "" {
		return 0
	}
	if t, err := dateparse.ParseAny(released); err == nil {
		return t.Year()
	}
	// discogs uses zeros for unknown parts, like 2015-00-00
	if len(released) >= 4 {
		if y, err := strconv.Atoi(released[:4]); err == nil {
			return y
		}
	}
	return 0
}
