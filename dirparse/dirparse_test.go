package dirparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.senan.xyz/nofuture/dirparse"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name      string
		wantTitle string
		wantTags  []string
	}{
		{"Artist - Title [2015] [EP]", "Artist - Title", []string{"2015", "EP"}},
		{"Artist - Title", "Artist - Title", nil},
		{"  Artist - Title  ", "Artist - Title", nil},
		{"Hodge & Acre - X _ Don't Get Me Started [2015] [EP]", "Hodge & Acre - X _ Don't Get Me Started", []string{"2015", "EP"}},
		{"Artist - Title [2015] (Remastered) [FLAC]", "Artist - Title", []string{"2015", "FLAC"}},
		{"Artist - Title [Vinyl Rip] [2015]", "Artist - Title [Vinyl Rip]", []string{"2015"}},
		{"Artist - Title [] [2015]", "Artist - Title []", []string{"2015"}},
		{"[2015] Artist - Title", "", []string{"2015"}},
		{"Artiste - Été [Réédition]", "Artiste - Été", []string{"Réédition"}},
		{"Artist - Title [web_rip]", "Artist - Title", []string{"web_rip"}},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			title, tags := dirparse.Split(tc.name)
			assert.Equal(t, tc.wantTitle, title)
			assert.Equal(t, tc.wantTags, tags)
		})
	}
}

func TestSplitNormalises(t *testing.T) {
	t.Parallel()

	decomposed := "Cafe\u0301 - Title [2015]"
	title, tags := dirparse.Split(decomposed)
	assert.Equal(t, "Caf\u00e9 - Title", title)
	assert.Equal(t, []string{"2015"}, tags)
}
