package table

import (
	"math/rand"

	"github.com/seth-ellison/express-blackjack/internal/game/card"
)

// Player is one participant's mutable state. IDs are 1-based for seats; the
// dealer is 0. GamesWon/GamesLost are cumulative across rounds; everything
// else is per-round and cleared by DiscardHand.
type Player struct {
	ID   int
	Name string

	Hand     []card.Card
	Total    int
	Standing bool
	Busted   bool
	Won      bool

	GamesWon  int
	GamesLost int

	// round-start counter baselines, for per-round result deltas
	baseWon  int
	baseLost int
}

// NewPlayer seats a participant.
func NewPlayer(id int, name string) *Player {
	return &Player{ID: id, Name: name}
}

// Hit appends a card to the hand and rescores. A standing player is simply
// denied the card; that is not an error.
func (p *Player) Hit(c card.Card) {
	if p.Standing {
		return
	}
	p.Hand = append(p.Hand, c)
	p.score()
}

// Stand passes the player's priority.
func (p *Player) Stand() {
	p.Standing = true
}

// DiscardHand wipes the per-round slate clean before a new deal. Cumulative
// win/loss counters survive.
func (p *Player) DiscardHand() {
	p.Hand = p.Hand[:0]
	p.Total = 0
	p.Standing = false
	p.Busted = false
	p.Won = false
	p.baseWon = p.GamesWon
	p.baseLost = p.GamesLost
}

// score recomputes the cached total and applies threshold side effects:
// busting loses the round on the spot, and exactly 21 wins it on the spot,
// both locking the player standing. Reaching 21 on the initial deal counts —
// first-21 immunity is never re-evaluated against the dealer.
func (p *Player) score() {
	p.Total = card.Score(p.Hand)

	if p.Total > 21 {
		p.Busted = true
		p.Standing = true
		p.GamesLost++
	} else if p.Total == 21 {
		p.Won = true
		p.Standing = true
		p.GamesWon++
	}
}

// Dealer is a Player that also owns the table's shoe and conceals its second
// card until the round resolves.
type Dealer struct {
	*Player

	shoe           *card.Shoe
	SecondRevealed bool
}

// NewDealer creates the house participant with a freshly shuffled shoe.
func NewDealer(name string, rng *rand.Rand) *Dealer {
	shoe := card.NewShoe(rng)
	shoe.Shuffle()
	return &Dealer{
		Player: NewPlayer(0, name),
		shoe:   shoe,
	}
}

// Deal draws a single card from the shoe. An exhausted shoe indicates a
// broken invariant (a fresh deck is built every round), so it panics rather
// than limp along with corrupt state.
func (d *Dealer) Deal() card.Card {
	c, err := d.shoe.Draw()
	if err != nil {
		panic("table: shoe exhausted mid-round")
	}
	return c
}

// Reshuffle replaces the shoe contents with a fresh shuffled deck.
func (d *Dealer) Reshuffle() {
	d.shoe.Reshuffle()
}

// VisibleHand is the hand as observers may see it: while the second card is
// concealed, only the first card and the hidden sentinel. Scoring never uses
// this view.
func (d *Dealer) VisibleHand() []card.Card {
	if !d.SecondRevealed && len(d.Hand) >= 2 {
		return []card.Card{d.Hand[0], card.Hidden}
	}
	return d.Hand
}
