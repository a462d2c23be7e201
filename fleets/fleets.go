// Package fleets divides the boats of a class into fleets: a random split for
// the first qualifying round, snake seeding over the current ranking for later
// rounds, and contiguous slices of the ranking for finals.
package fleets

import (
	"math/rand/v2"

	"github.com/ZeMendes2393/sailscore/apperr"
)

// Fleet is one fleet of a generated set. Members are entry ids in the order
// they were dealt.
type Fleet struct {
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	Order   int     `json:"order_index"`
	Members []int64 `json:"entry_ids"`
}

type preset struct {
	name  string
	color string
}

var qualifyingPresets = []preset{
	{"Yellow", "#FFEB3B"},
	{"Blue", "#2196F3"},
	{"Red", "#F44336"},
	{"Green", "#4CAF50"},
}

// MinFleets and MaxFleets bound the qualifying fleet count.
const (
	MinFleets = 2
	MaxFleets = 4
)

// Presets returns the named fleets used for count qualifying fleets.
func Presets(count int) ([]Fleet, error) {
	if count < MinFleets || count > MaxFleets {
		return nil, apperr.Validation(apperr.CodeInvalidFleetCount, "fleet count must be between %d and %d, got %d", MinFleets, MaxFleets, count).
			With("fleet_count", count)
	}
	out := make([]Fleet, count)
	for i := range out {
		p := qualifyingPresets[i]
		out[i] = Fleet{Name: p.name, Color: p.color, Order: i + 1, Members: []int64{}}
	}
	return out, nil
}

// InitialSplit shuffles entries and deals them round-robin into count fleets.
func InitialSplit(entries []int64, count int, rng *rand.Rand) ([]Fleet, error) {
	out, err := Presets(count)
	if err != nil {
		return nil, err
	}
	shuffled := append([]int64(nil), entries...)
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	for i, id := range shuffled {
		f := &out[i%count]
		f.Members = append(f.Members, id)
	}
	return out, nil
}

// SnakeIndex returns the fleet (0-based) that the boat ranked i (0-based)
// goes to when dealing over k fleets: forward on even passes, backward on
// odd ones. With three fleets: A B C C B A A B C ...
func SnakeIndex(i, k int) int {
	pass, pos := i/k, i%k
	if pass%2 == 1 {
		return k - 1 - pos
	}
	return pos
}

// Reshuffle deals ranked entries (best first) into count qualifying fleets
// using snake seeding.
func Reshuffle(ranked []int64, count int) ([]Fleet, error) {
	out, err := Presets(count)
	if err != nil {
		return nil, err
	}
	for i, id := range ranked {
		f := &out[SnakeIndex(i, count)]
		f.Members = append(f.Members, id)
	}
	return out, nil
}
