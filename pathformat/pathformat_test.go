package pathformat_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/nofuture/pathformat"
	"go.senan.xyz/nofuture/release"
)

var hodgeAcre = release.Release{
	ID:      6666365,
	Title:   "X / Don't Get Me Started",
	Year:    2015,
	Label:   "Wisdom Teeth",
	CatNo:   "WSDM002",
	Artist:  "Hodge, Acre",
	Artists: []string{"Hodge", "Acre"},
}

func TestValidation(t *testing.T) {
	t.Parallel()

	var pf pathformat.Format
	_, err := pf.Execute(hodgeAcre)
	assert.ErrorIs(t, err, pathformat.ErrInvalidFormat) // not parsed yet

	assert.ErrorIs(t, pf.Parse(""), pathformat.ErrInvalidFormat)
	assert.ErrorIs(t, pf.Parse(" "), pathformat.ErrInvalidFormat)
	assert.ErrorIs(t, pf.Parse(`/music/{{ .Label }}`), pathformat.ErrInvalidFormat)
	assert.ErrorIs(t, pf.Parse(`{{ .Label }`), pathformat.ErrInvalidFormat)
	assert.ErrorIs(t, pf.Parse(`{{ .Genre }}`), pathformat.ErrInvalidFormat)

	assert.ErrorIs(t, pf.Parse(`{{ .Label }}//{{ .Title }}`), pathformat.ErrBadData)
	assert.ErrorIs(t, pf.Parse(`{{ .Label }}/{{ .Title }}/`), pathformat.ErrBadData)
	assert.ErrorIs(t, pf.Parse(`{{ .Label }}/../{{ .Title }}`), pathformat.ErrBadData)

	require.NoError(t, pf.Parse(pathformat.Default))
	assert.Equal(t, pathformat.Default, pf.String())
}

func TestDefaultFormat(t *testing.T) {
	t.Parallel()

	var pf pathformat.Format
	require.NoError(t, pf.Parse(pathformat.Default))

	path, err := pf.Execute(hodgeAcre)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Wisdom Teeth", "[WSDM002] Hodge, Acre - X _ Don't Get Me Started (2015)"), path)
}

func TestCustomFormat(t *testing.T) {
	t.Parallel()

	var pf pathformat.Format
	require.NoError(t, pf.Parse(`{{ .Artists | join "; " }}/{{ .Year }}/{{ .Title }} [{{ .CatNo | lower }}]`))

	path, err := pf.Execute(hodgeAcre)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Hodge; Acre", "2015", "X _ Don't Get Me Started [wsdm002]"), path)
}

func TestComponentsSanitisedIndependently(t *testing.T) {
	t.Parallel()

	var pf pathformat.Format
	require.NoError(t, pf.Parse(pathformat.Default))

	r := hodgeAcre
	r.Label = "AC/DC Records."
	r.CatNo = "AC/01"
	path, err := pf.Execute(r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("AC_DC Records", "[AC_01] Hodge, Acre - X _ Don't Get Me Started (2015)"), path)

	r = hodgeAcre
	r.Label = "..."
	_, err = pf.Execute(r)
	assert.ErrorIs(t, err, pathformat.ErrInvalidPathComponent)

	r = hodgeAcre
	r.Title = `???`
	_, err = pf.Execute(r)
	assert.ErrorIs(t, err, pathformat.ErrInvalidPathComponent)
}

func TestASCII(t *testing.T) {
	t.Parallel()

	pf := pathformat.Format{ASCII: true}
	require.NoError(t, pf.Parse(`{{ .Artist }} - {{ .Title }}`))

	r := hodgeAcre
	r.Artist = "Rähinä"
	r.Title = "Mayhem I"
	path, err := pf.Execute(r)
	require.NoError(t, err)
	assert.Equal(t, "Rahina - Mayhem I", path)
}
