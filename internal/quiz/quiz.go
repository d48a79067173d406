// Package quiz builds "guess the raga" questions from the catalog.
package quiz

import (
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/ragam/ragam/internal/model"
)

// NumChoices is the size of a full answer set: the correct raga plus distractors.
const NumChoices = 3

// ErrEmptyPool is returned when no song with a video link is available.
var ErrEmptyPool = errors.New("no songs with a video link available")

// Pool is the part of the catalog a quiz draws from.
type Pool interface {
	// Playable returns songs with a video link and a known raga.
	Playable() []model.Song
	// Ragas returns the distinct known raga names.
	Ragas() []string
}

// Generator draws questions. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator. A nil src seeds from the runtime's random source.
func New(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// NewQuestion picks a target song uniformly from the playable songs and
// builds a shuffled choice set of its raga plus up to two distractors.
func (g *Generator) NewQuestion(p Pool) (model.Question, error) {
	songs := p.Playable()
	if len(songs) == 0 {
		return model.Question{}, ErrEmptyPool
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	target := songs[g.rng.IntN(len(songs))]

	var others []string
	for _, r := range p.Ragas() {
		if r != "" && r != target.Raga {
			others = append(others, r)
		}
	}

	choices := append([]string{target.Raga}, g.sample(others, NumChoices-1)...)
	g.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return model.Question{
		ID:      uuid.NewString(),
		Song:    target,
		Choices: choices,
	}, nil
}

// sample draws min(n, len(pool)) items without replacement using a partial
// Fisher-Yates shuffle. pool is reordered in place.
func (g *Generator) sample(pool []string, n int) []string {
	n = min(n, len(pool))
	for i := range n {
		j := i + g.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Check compares choice with the target raga.
func Check(q model.Question, choice string) model.Verdict {
	if choice == q.Song.Raga {
		return model.Correct
	}
	return model.Incorrect
}
