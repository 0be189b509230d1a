package release_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/nofuture/discogs"
	"go.senan.xyz/nofuture/release"
)

func TestStripSuffix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Klaus", release.StripSuffix("Klaus (25)"))
	assert.Equal(t, "Klaus", release.StripSuffix("Klaus (2)"))
	assert.Equal(t, "Klaus", release.StripSuffix("Klaus (100)"))
	assert.Equal(t, "Klaus (1)", release.StripSuffix("Klaus (1)"))
	assert.Equal(t, "Klaus (0)", release.StripSuffix("Klaus (0)"))
	assert.Equal(t, "Klaus (01)", release.StripSuffix("Klaus (01)"))
	assert.Equal(t, "Klaus (abc)", release.StripSuffix("Klaus (abc)"))
	assert.Equal(t, "Klaus(25)", release.StripSuffix("Klaus(25)"))
	assert.Equal(t, "Klaus (25) Live", release.StripSuffix("Klaus (25) Live"))
	assert.Equal(t, "Klaus", release.StripSuffix("Klaus"))
}

func readFixture(t *testing.T) *discogs.Release {
	t.Helper()

	data, err := os.ReadFile("../discogs/testdata/release-6666365.json")
	require.NoError(t, err)
	var r discogs.Release
	require.NoError(t, json.Unmarshal(data, &r))
	return &r
}

func TestFromDiscogs(t *testing.T) {
	t.Parallel()

	r, err := release.FromDiscogs(readFixture(t))
	require.NoError(t, err)
	assert.Equal(t, release.Release{
		ID:      6666365,
		Title:   "X / Don't Get Me Started",
		Year:    2015,
		Label:   "Wisdom Teeth",
		CatNo:   "WSDM002",
		Artist:  "Hodge, Acre",
		Artists: []string{"Hodge", "Acre"},
	}, r)
}

func TestFromDiscogsPrimaryLabel(t *testing.T) {
	t.Parallel()

	d := readFixture(t)
	d.Labels = []discogs.Label{
		{Name: "Hessle Audio (2)", CatNo: "HES 001"},
		{Name: "Other", CatNo: "OTH 001"},
	}

	r, err := release.FromDiscogs(d)
	require.NoError(t, err)
	assert.Equal(t, "Hessle Audio", r.Label)
	assert.Equal(t, "HES 001", r.CatNo)
}

func TestFromDiscogsYearFallback(t *testing.T) {
	t.Parallel()

	d := readFixture(t)
	d.Year = 0
	d.Released = "2015-03-16"
	r, err := release.FromDiscogs(d)
	require.NoError(t, err)
	assert.Equal(t, 2015, r.Year)

	d.Released = "2014-00-00"
	r, err = release.FromDiscogs(d)
	require.NoError(t, err)
	assert.Equal(t, 2014, r.Year)

	d.Released = ""
	_, err = release.FromDiscogs(d)
	assert.ErrorIs(t, err, release.ErrIncomplete)
}

func TestFromDiscogsIncomplete(t *testing.T) {
	t.Parallel()

	d := readFixture(t)
	d.Labels = nil
	_, err := release.FromDiscogs(d)
	assert.ErrorIs(t, err, release.ErrIncomplete)
	assert.ErrorContains(t, err, "label")

	d = readFixture(t)
	d.Artists = nil
	_, err = release.FromDiscogs(d)
	assert.ErrorIs(t, err, release.ErrIncomplete)

	d = readFixture(t)
	d.Title = "  "
	_, err = release.FromDiscogs(d)
	assert.ErrorIs(t, err, release.ErrIncomplete)
}

func TestString(t *testing.T) {
	t.Parallel()

	r, err := release.FromDiscogs(readFixture(t))
	require.NoError(t, err)
	assert.Equal(t, "Hodge, Acre - X / Don't Get Me Started (2015) [Wisdom Teeth WSDM002]", r.String())
}
