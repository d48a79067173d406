package quiz

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragam/ragam/internal/catalog"
	"github.com/ragam/ragam/internal/model"
)

func scenarioCatalog() *catalog.Catalog {
	return catalog.New([]model.Song{
		{Title: "Sundari", Film: "Thalapathy", Raga: "Yamuna Kalyani", VideoLink: "http://a"},
		{Title: "Mannil Intha", Film: "Keladi Kanmani", Raga: "Shanmukhapriya", VideoLink: "http://b"},
		{Title: "X", Film: "Y", Raga: "Kalyani", VideoLink: model.NoLink},
	})
}

func seeded(seed uint64) *Generator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestNewQuestionScenario(t *testing.T) {
	cat := scenarioCatalog()
	g := seeded(1)

	for range 200 {
		q, err := g.NewQuestion(cat)
		require.NoError(t, err)
		assert.NotEqual(t, "X", q.Song.Title, "songs without a video are never picked")
		assert.Contains(t, q.Song.VideoLink, "http")
		require.Len(t, q.Choices, NumChoices)
		assert.ElementsMatch(t, []string{"Yamuna Kalyani", "Shanmukhapriya", "Kalyani"}, q.Choices)
	}
}

func TestNewQuestionChoiceInvariants(t *testing.T) {
	songs := []model.Song{}
	ragas := []string{"Kalyani", "Mohanam", "Todi", "Bhairavi", "Kharaharapriya", "Hindolam"}
	for i, r := range ragas {
		songs = append(songs, model.Song{Title: r + " song", Raga: r, VideoLink: "https://youtu.be/" + r})
		if i%2 == 0 {
			songs = append(songs, model.Song{Title: r + " no video", Raga: r})
		}
	}
	songs = append(songs, model.Song{Title: "Unknown", VideoLink: "https://youtu.be/u"})
	cat := catalog.New(songs)
	g := seeded(7)

	for range 500 {
		q, err := g.NewQuestion(cat)
		require.NoError(t, err)
		require.True(t, q.Song.HasRaga())
		require.Len(t, q.Choices, NumChoices)

		count := 0
		seen := make(map[string]bool)
		for _, c := range q.Choices {
			assert.NotEmpty(t, c, "missing raga is never offered")
			assert.False(t, seen[c], "duplicate choice %q", c)
			seen[c] = true
			if c == q.Song.Raga {
				count++
			}
		}
		assert.Equal(t, 1, count, "correct raga appears exactly once")
	}
}

func TestNewQuestionSmallPool(t *testing.T) {
	tests := []struct {
		name  string
		songs []model.Song
		want  int
	}{
		{"single raga", []model.Song{
			{Raga: "Kalyani", VideoLink: "http://a"},
			{Raga: "Kalyani", VideoLink: "http://b"},
		}, 1},
		{"one distractor", []model.Song{
			{Raga: "Kalyani", VideoLink: "http://a"},
			{Raga: "Mohanam", VideoLink: "http://b"},
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := seeded(3).NewQuestion(catalog.New(tt.songs))
			require.NoError(t, err)
			assert.Len(t, q.Choices, tt.want)
		})
	}
}

func TestNewQuestionEmptyPool(t *testing.T) {
	cat := catalog.New([]model.Song{
		{Title: "A", Raga: "Kalyani", VideoLink: model.NoLink},
		{Title: "B", Raga: "Mohanam"},
	})
	_, err := New(nil).NewQuestion(cat)
	assert.True(t, errors.Is(err, ErrEmptyPool))

	_, err = New(nil).NewQuestion(catalog.New(nil))
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestNewQuestionSkipsVideosWithoutRaga(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader(`The Song,The Film Name,The Ragam,Video Link
Sundari,Thalapathy,nan,http://a
Mannil Intha,Keladi Kanmani,,https://youtu.be/b
X,Y,Kalyani,No Link
`))
	require.NoError(t, err)
	require.Empty(t, cat.Playable())

	_, err = seeded(3).NewQuestion(cat)
	assert.ErrorIs(t, err, ErrEmptyPool, "a song with a video but no raga has no correct answer to offer")
}

func TestNewQuestionFreshEachCall(t *testing.T) {
	g := seeded(11)
	cat := scenarioCatalog()

	orders := make(map[string]bool)
	ids := make(map[string]bool)
	for range 100 {
		q, err := g.NewQuestion(cat)
		require.NoError(t, err)
		require.False(t, ids[q.ID], "question IDs are unique")
		ids[q.ID] = true
		key := q.Choices[0] + "|" + q.Choices[1] + "|" + q.Choices[2]
		orders[key] = true
	}
	assert.Greater(t, len(orders), 1, "choice order is reshuffled per question")
}

func TestNewQuestionCoversTargets(t *testing.T) {
	g := seeded(5)
	cat := scenarioCatalog()
	hits := make(map[string]int)
	for range 400 {
		q, err := g.NewQuestion(cat)
		require.NoError(t, err)
		hits[q.Song.Title]++
	}
	assert.Len(t, hits, 2)
	assert.Greater(t, hits["Sundari"], 100)
	assert.Greater(t, hits["Mannil Intha"], 100)
}

func TestCheck(t *testing.T) {
	q := model.Question{Song: model.Song{Raga: "Kalyani"}, Choices: []string{"Mohanam", "Kalyani", "Todi"}}
	assert.Equal(t, model.Correct, Check(q, "Kalyani"))
	assert.Equal(t, model.Incorrect, Check(q, "Mohanam"))
	assert.Equal(t, model.Incorrect, Check(q, "kalyani"))
	// Repeatable: checking again gives the same answer.
	assert.Equal(t, model.Correct, Check(q, "Kalyani"))
}

func TestSample(t *testing.T) {
	g := seeded(9)
	pool := []string{"a", "b", "c", "d"}
	got := g.sample(pool, 2)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])

	assert.Len(t, g.sample([]string{"a"}, 2), 1)
	assert.Empty(t, g.sample(nil, 2))
}
