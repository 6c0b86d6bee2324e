package card

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyShoe is returned by Draw on an exhausted shoe. A fresh 52-card
// shoe per round cannot run dry under two-seat play, so hitting this means
// a modeling bug upstream.
var ErrEmptyShoe = errors.New("shoe is empty")

// Shoe is the dealer's deck: an ordered set of undealt cards. It is owned by
// exactly one table's dealer and is not safe for concurrent use on its own.
type Shoe struct {
	cards []Card
	rng   *rand.Rand
}

// NewShoe returns a full shoe in canonical order, unshuffled. The rand
// source drives every subsequent Shuffle; pass a seeded source for
// deterministic deals, or nil for a time-seeded one.
func NewShoe(rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Shoe{rng: rng}
	s.rebuild()
	return s
}

// NewShoeFromCards returns a shoe holding exactly the given cards in the
// given order. Draw pops from the tail, so the last card listed is dealt
// first. Used for fixed deals.
func NewShoeFromCards(cards ...Card) *Shoe {
	s := &Shoe{
		cards: append([]Card(nil), cards...),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	return s
}

// Shuffle permutes the shoe in place (Fisher–Yates over the shoe's source).
func (s *Shoe) Shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the tail card.
func (s *Shoe) Draw() (Card, error) {
	if len(s.cards) == 0 {
		return 0, ErrEmptyShoe
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return c, nil
}

// Reshuffle discards whatever remains and starts over with a freshly
// shuffled full deck. Called at every round setup.
func (s *Shoe) Reshuffle() {
	s.rebuild()
	s.Shuffle()
}

// Remaining reports how many cards are still undealt.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

func (s *Shoe) rebuild() {
	s.cards = s.cards[:0]
	for i := 0; i < DeckSize; i++ {
		s.cards = append(s.cards, Card(i))
	}
}
