package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragam/ragam/internal/model"
)

const sampleCSV = `The Song,The Film Name,The Ragam,Video Link
Sundari,Thalapathy,Yamuna Kalyani,http://a
Mannil Intha,Keladi Kanmani,Shanmukhapriya,http://b
X,Y,Kalyani,
`

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return cat
}

func TestParse(t *testing.T) {
	cat := sampleCatalog(t)
	require.Equal(t, 3, cat.Len())

	s, err := cat.Song(0)
	require.NoError(t, err)
	assert.Equal(t, model.Song{ID: 0, Title: "Sundari", Film: "Thalapathy", Raga: "Yamuna Kalyani", VideoLink: "http://a"}, s)

	s, err = cat.Song(2)
	require.NoError(t, err)
	assert.Equal(t, model.NoLink, s.VideoLink, "missing link becomes the sentinel")
	assert.False(t, s.HasVideo())

	_, err = cat.Song(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseTrimsAndTracksMissing(t *testing.T) {
	data := "\ufeff The Song , The Film Name,The Ragam,Video Link,Extra\n" +
		"  Padded  ,  Film ,  nan ,  ,x\n" +
		"Other,Film2,,NaN,y\n"
	cat, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	s, _ := cat.Song(0)
	assert.Equal(t, "Padded", s.Title)
	assert.Equal(t, "Film", s.Film)
	assert.False(t, s.HasRaga(), "literal nan is treated as missing")
	assert.Equal(t, model.NoLink, s.VideoLink)

	s, _ = cat.Song(1)
	assert.False(t, s.HasRaga())
	assert.Equal(t, model.NoLink, s.VideoLink)

	assert.Empty(t, cat.Ragas())
	assert.Empty(t, cat.SearchRagas("nan").Groups, "missing ragas never match")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"missing column", "The Song,The Film Name,Video Link\na,b,c\n"},
		{"ragged row", "The Song,The Film Name,The Ragam,Video Link\na,b,c\n"},
		{"bad quote", "The Song,The Film Name,The Ragam,Video Link\n\"a,b,c,d\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataLoad)
			var dle *DataLoadError
			assert.True(t, errors.As(err, &dle))
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSearchRagas(t *testing.T) {
	cat := sampleCatalog(t)

	res := cat.SearchRagas("kalyani")
	require.Equal(t, model.Found, res.State())
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Yamuna Kalyani", res.Groups[0].Name)
	assert.Equal(t, 1, res.Groups[0].Count())
	assert.True(t, res.Groups[0].Songs[0].HasVideo())
	assert.Equal(t, "Kalyani", res.Groups[1].Name)
	assert.Equal(t, 1, res.Groups[1].Count())
	assert.False(t, res.Groups[1].Songs[0].HasVideo())

	assert.Equal(t, model.NoQuery, cat.SearchRagas("   ").State())
	assert.Equal(t, model.NoResults, cat.SearchRagas("Todi").State())
	assert.Equal(t, "kalyani", cat.SearchRagas("  kalyani ").Query)
}

func TestSearchRagasPartitionsMatches(t *testing.T) {
	cat := New([]model.Song{
		{Title: "A", Raga: "Kalyani"},
		{Title: "B", Raga: "Mohanam"},
		{Title: "C", Raga: "Yamuna Kalyani"},
		{Title: "D", Raga: "Kalyani"},
		{Title: "E", Raga: "KALYANI"},
	})
	for _, q := range []string{"kal", "KALYANI", "an", "m", "x"} {
		res := cat.SearchRagas(q)
		seen := make(map[int]bool)
		for _, g := range res.Groups {
			for _, s := range g.Songs {
				assert.Equal(t, g.Name, s.Raga, "group %q holds only its exact raga", g.Name)
				assert.Contains(t, strings.ToLower(s.Raga), strings.ToLower(q))
				assert.False(t, seen[s.ID], "song %d appears in two groups", s.ID)
				seen[s.ID] = true
			}
		}
		for _, s := range cat.Songs() {
			if strings.Contains(strings.ToLower(s.Raga), strings.ToLower(q)) {
				assert.True(t, seen[s.ID], "matching song %d missing for %q", s.ID, q)
			}
		}
	}

	res := cat.SearchRagas("kalyani")
	require.Len(t, res.Groups, 3)
	g, ok := res.Group("Kalyani")
	require.True(t, ok)
	assert.Equal(t, 2, g.Count())
}

func TestSearchSongs(t *testing.T) {
	cat := sampleCatalog(t)

	res := cat.SearchSongs("sundari")
	require.Equal(t, model.Found, res.State())
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "Sundari (Thalapathy)", res.Matches[0].Label)
	assert.Equal(t, 0, res.Matches[0].SongID)

	assert.Equal(t, model.NoQuery, cat.SearchSongs("").State())
	assert.Equal(t, model.NoResults, cat.SearchSongs("zzz").State())
}

func TestSearchSongsDistinctLabels(t *testing.T) {
	cat := New([]model.Song{
		{Title: "Poove", Film: "One", Raga: "Kalyani"},
		{Title: "Poove", Film: "Two", Raga: "Mohanam"},
		{Title: "Poove", Film: "One", Raga: "Kalyani"},
	})
	res := cat.SearchSongs("poo")
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "Poove (One)", res.Matches[0].Label)
	assert.Equal(t, "Poove (Two)", res.Matches[1].Label)
}

func TestPlayableAndRagas(t *testing.T) {
	cat := New([]model.Song{
		{Title: "A", Raga: "Kalyani", VideoLink: "https://youtu.be/a"},
		{Title: "B", Raga: "", VideoLink: "https://youtu.be/b"},
		{Title: "C", Raga: "Mohanam"},
		{Title: "D", Raga: "Kalyani", VideoLink: "https://youtu.be/d"},
	})
	playable := cat.Playable()
	require.Len(t, playable, 2)
	assert.Equal(t, "A", playable[0].Title)
	assert.Equal(t, "D", playable[1].Title)
	assert.Equal(t, []string{"Kalyani", "Mohanam"}, cat.Ragas())

	s, _ := cat.Song(2)
	assert.Equal(t, model.NoLink, s.VideoLink)
}
