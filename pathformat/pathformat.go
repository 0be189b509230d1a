package pathformat

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"github.com/rainycape/unidecode"
	"go.senan.xyz/nofuture/release"
)

var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrBadData       = errors.New("invalid data")
)

// Default is the label/[catno] artist - title (year) layout.
const Default = `{{ .Label }}/[{{ .CatNo }}] {{ .Artist }} - {{ .Title }} ({{ .Year }})`

// Data is passed to the path format template. Every string has already been
// through Sanitize, so a field can never introduce a separator.
type Data struct {
	ID      int
	Label   string
	CatNo   string
	Artist  string
	Artists []string
	Title   string
	Year    int
}

type Format struct {
	tmpl *texttemplate.Template
	raw  string

	// ASCII transliterates fields to ASCII before they are sanitised.
	ASCII bool
}

func (pf *Format) Parse(pfStr string) error {
	pfStr = strings.TrimSpace(pfStr)
	if pfStr == "" {
		return fmt.Errorf("%w: empty format", ErrInvalidFormat)
	}
	if path.IsAbs(pfStr) || filepath.IsAbs(pfStr) {
		return fmt.Errorf("%w: format must be relative to the output dir", ErrInvalidFormat)
	}

	tmpl, err := texttemplate.
		New("template").
		Funcs(funcMap).
		Option("missingkey=error").
		Parse(pfStr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	if _, err := execute(tmpl, sampleData); err != nil {
		return err
	}

	pf.tmpl = tmpl
	pf.raw = pfStr
	return nil
}

// Execute returns the destination of r relative to the output dir, using the
// OS path separator.
func (pf *Format) Execute(r release.Release) (string, error) {
	if pf.tmpl == nil {
		return "", fmt.Errorf("%w: format not parsed", ErrInvalidFormat)
	}
	data, err := pf.data(r)
	if err != nil {
		return "", err
	}
	p, err := execute(pf.tmpl, data)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(p), nil
}

func (pf *Format) String() string {
	return pf.raw
}

func (pf *Format) data(r release.Release) (Data, error) {
	clean := func(s string) (string, error) {
		if pf.ASCII {
			s = unidecode.Unidecode(s)
		}
		return Sanitize(s)
	}

	var d Data
	var err error
	d.ID = r.ID
	d.Year = r.Year
	if d.Label, err = clean(r.Label); err != nil {
		return Data{}, fmt.Errorf("label: %w", err)
	}
	if d.CatNo, err = clean(r.CatNo); err != nil {
		return Data{}, fmt.Errorf("catalogue number: %w", err)
	}
	if d.Artist, err = clean(r.Artist); err != nil {
		return Data{}, fmt.Errorf("artist: %w", err)
	}
	if d.Title, err = clean(r.Title); err != nil {
		return Data{}, fmt.Errorf("title: %w", err)
	}
	for _, a := range r.Artists {
		a, err := clean(a)
		if err != nil {
			return Data{}, fmt.Errorf("artists: %w", err)
		}
		d.Artists = append(d.Artists, a)
	}
	return d, nil
}

func execute(tmpl *texttemplate.Template, data Data) (string, error) {
	var buff strings.Builder
	if err := tmpl.Execute(&buff, data); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	p := buff.String()
	for _, seg := range strings.Split(p, "/") {
		switch strings.TrimSpace(seg) {
		case "":
			return "", fmt.Errorf("%w: %q has an empty path segment", ErrBadData, p)
		case ".", "..":
			return "", fmt.Errorf("%w: %q has a relative path segment", ErrBadData, p)
		}
	}
	return p, nil
}

var sampleData = Data{
	ID:      1,
	Label:   "Label",
	CatNo:   "CAT001",
	Artist:  "Artist A, Artist B",
	Artists: []string{"Artist A", "Artist B"},
	Title:   "Title",
	Year:    2000,
}

var funcMap = texttemplate.FuncMap{
	"join":  func(delim string, items []string) string { return strings.Join(items, delim) },
	"pad0":  func(amount, n int) string { return fmt.Sprintf("%0*d", amount, n) },
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}
