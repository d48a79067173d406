// Package catalog loads the song dataset and answers raga and title queries.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/ragam/ragam/internal/model"
)

// Column headers of the dataset.
const (
	ColumnSong  = "The Song"
	ColumnFilm  = "The Film Name"
	ColumnRaga  = "The Ragam"
	ColumnVideo = "Video Link"
)

var (
	// ErrDataLoad matches any *DataLoadError via errors.Is.
	ErrDataLoad = errors.New("data load failed")
	// ErrNotFound is returned when a song ID is outside the catalog.
	ErrNotFound = errors.New("song not found")
)

// DataLoadError reports an unreadable or malformed dataset.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataLoad) match.
func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// Cell values that count as missing, as a spreadsheet export writes them.
var missingValues = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Catalog is the immutable in-memory song table.
type Catalog struct {
	songs []model.Song
}

// New builds a catalog from songs already in record shape. IDs are reassigned
// to row positions.
func New(songs []model.Song) *Catalog {
	out := make([]model.Song, len(songs))
	for i, s := range songs {
		s.ID = i
		if s.VideoLink == "" {
			s.VideoLink = model.NoLink
		}
		out[i] = s
	}
	return &Catalog{songs: out}
}

// ParseFile reads a dataset from disk.
func ParseFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	defer f.Close()

	cat, err := parse(f)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	return cat, nil
}

// Parse reads a dataset with a header row naming at least the four columns.
func Parse(r io.Reader) (*Catalog, error) {
	cat, err := parse(r)
	if err != nil {
		return nil, &DataLoadError{Source: "reader", Err: err}
	}
	return cat, nil
}

func parse(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty dataset")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		idx[h] = i
	}
	for _, col := range []string{ColumnSong, ColumnFilm, ColumnRaga, ColumnVideo} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var songs []model.Song
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(songs)+2, err)
		}
		link := cell(rec, idx[ColumnVideo])
		if link == "" {
			link = model.NoLink
		}
		songs = append(songs, model.Song{
			ID:        len(songs),
			Title:     cell(rec, idx[ColumnSong]),
			Film:      cell(rec, idx[ColumnFilm]),
			Raga:      cell(rec, idx[ColumnRaga]),
			VideoLink: link,
		})
	}
	return &Catalog{songs: songs}, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	v := strings.TrimSpace(rec[i])
	if missingValues[v] {
		return ""
	}
	return v
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// Songs returns a copy of all rows.
func (c *Catalog) Songs() []model.Song {
	return append([]model.Song(nil), c.songs...)
}

// Song returns the row with the given ID.
func (c *Catalog) Song(id int) (model.Song, error) {
	if id < 0 || id >= len(c.songs) {
		return model.Song{}, ErrNotFound
	}
	return c.songs[id], nil
}

// Playable returns the songs that can be used as quiz targets.
func (c *Catalog) Playable() []model.Song {
	return lo.Filter(c.songs, func(s model.Song, _ int) bool {
		return s.HasVideo() && s.HasRaga()
	})
}

// Ragas returns the distinct known raga names in first-appearance order.
func (c *Catalog) Ragas() []string {
	names := lo.FilterMap(c.songs, func(s model.Song, _ int) (string, bool) {
		return s.Raga, s.HasRaga()
	})
	return lo.Uniq(names)
}

// SearchRagas matches q case-insensitively against raga names and groups the
// hits by exact raga name. An empty query runs nothing.
func (c *Catalog) SearchRagas(q string) model.RagaResults {
	q = strings.TrimSpace(q)
	res := model.RagaResults{Query: q}
	if q == "" {
		return res
	}
	needle := strings.ToLower(q)

	pos := make(map[string]int)
	for _, s := range c.songs {
		if !s.HasRaga() || !strings.Contains(strings.ToLower(s.Raga), needle) {
			continue
		}
		i, ok := pos[s.Raga]
		if !ok {
			i = len(res.Groups)
			pos[s.Raga] = i
			res.Groups = append(res.Groups, model.RagaGroup{Name: s.Raga})
		}
		res.Groups[i].Songs = append(res.Groups[i].Songs, s)
	}
	return res
}

// SearchSongs matches q case-insensitively against song titles. Matches with
// the same display label are listed once.
func (c *Catalog) SearchSongs(q string) model.SongResults {
	q = strings.TrimSpace(q)
	res := model.SongResults{Query: q}
	if q == "" {
		return res
	}
	needle := strings.ToLower(q)

	seen := make(map[string]bool)
	for _, s := range c.songs {
		if s.Title == "" || !strings.Contains(strings.ToLower(s.Title), needle) {
			continue
		}
		label := s.Label()
		if seen[label] {
			continue
		}
		seen[label] = true
		res.Matches = append(res.Matches, model.SongMatch{SongID: s.ID, Label: label})
	}
	return res
}
