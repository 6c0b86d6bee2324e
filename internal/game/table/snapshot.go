package table

import (
	"github.com/seth-ellison/express-blackjack/internal/game/card"
	"github.com/seth-ellison/express-blackjack/internal/protocol"
)

// Snapshot captures the full serialized view of the match for broadcast.
// The dealer's hand goes out censored while its second card is concealed;
// the total is the true score either way.
func (t *Table) Snapshot() *protocol.GameState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := &protocol.GameState{
		ActivePlayerID: t.active,
		Round:          t.round,
		IsRoundEnding:  t.roundEnding,
		Dealer:         participantState(t.Dealer.Player, t.Dealer.VisibleHand()),
		Players:        make([]protocol.PlayerState, 0, len(t.Seats)),
	}
	for _, p := range t.Seats {
		state.Players = append(state.Players, participantState(p, p.Hand))
	}
	return state
}

func participantState(p *Player, visible []card.Card) protocol.PlayerState {
	hand := make([]int, len(visible))
	for i, c := range visible {
		hand[i] = int(c)
	}
	return protocol.PlayerState{
		ID:         p.ID,
		Name:       p.Name,
		Hand:       hand,
		Total:      p.Total,
		HasWon:     p.Won,
		HasBusted:  p.Busted,
		IsStanding: p.Standing,
		GamesWon:   p.GamesWon,
		GamesLost:  p.GamesLost,
	}
}
