package table

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

// MaxSeats is the number of player seats at a table.
const MaxSeats = 2

// dealerStandsAt is the dealer's draw threshold: the dealer keeps hitting
// while its total is below this.
const dealerStandsAt = 15

// Action is a turn action from a seat.
type Action string

const (
	ActionHit   Action = "Hit"
	ActionStand Action = "Stand"
)

// ParseAction validates a wire action string.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionHit, ActionStand:
		return Action(s), true
	}
	return "", false
}

// Conn is the non-owning view of a transport connection bound to a seat.
// Send must not block on I/O; a send failure detaches only that socket.
type Conn interface {
	ID() string
	Send(v any) error
}

// boundConn associates a live connection with a seat.
type boundConn struct {
	conn     Conn
	playerID int
}

// RoundResult is one seat's win/loss delta for a settled round.
type RoundResult struct {
	Name   string
	Wins   int
	Losses int
}

// Table is one blackjack match: a dealer, up to two seats, and the sockets
// currently observing it. A table is a serial actor — every mutating entry
// point takes the table mutex, so racing actions can never interleave
// mid-transition.
type Table struct {
	mu sync.Mutex

	ID        string
	Dealer    *Dealer
	Seats     []*Player
	CreatedAt time.Time

	active      int // 1-based id of the seat whose turn it is
	round       int
	roundEnding bool

	conns       []boundConn
	lastResults []RoundResult
}

// New creates an empty table. The rand source seeds the dealer's shoe; nil
// uses a time-seeded one.
func New(id string, rng *rand.Rand) *Table {
	return &Table{
		ID:        id,
		Dealer:    NewDealer("DEAL-R", rng),
		CreatedAt: time.Now(),
		active:    1,
	}
}

// AddPlayer fills the next seat and returns its 1-based player id, or false
// when both seats are already taken.
func (t *Table) AddPlayer(name string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.Seats) >= MaxSeats {
		return 0, false
	}
	id := len(t.Seats) + 1
	t.Seats = append(t.Seats, NewPlayer(id, name))
	return id, true
}

// SeatCount reports how many seats are filled.
func (t *Table) SeatCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Seats)
}

// Round reports the current round number.
func (t *Table) Round() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.round
}

// Setup begins a new round: fresh shoe, fresh hands, dealer's second card
// concealed. Dealing only happens once both seats are filled.
func (t *Table) Setup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setupLocked()
}

func (t *Table) setupLocked() {
	t.roundEnding = false
	t.round++

	if len(t.Seats) < MaxSeats {
		log.Printf("table %s: not enough players to set up round %d", t.ID, t.round)
		return
	}

	t.Dealer.Reshuffle()

	for _, p := range t.Seats {
		p.DiscardHand()
		p.Hit(t.Dealer.Deal())
		p.Hit(t.Dealer.Deal())
	}

	d := t.Dealer
	d.DiscardHand()
	d.SecondRevealed = false
	d.Hit(d.Deal())
	d.Hit(d.Deal())
}

// Accept applies a turn action. It is rejected without any state change
// unless playerID is the active seat. The second return reports whether the
// action ended the round, in which case the next round has already been set
// up and the caller should broadcast an extra synchronization frame.
func (t *Table) Accept(playerID int, action Action) (accepted, roundEnded bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if playerID != t.active {
		return false, false
	}
	p := t.seatLocked(playerID)
	if p == nil {
		return false, false
	}

	switch action {
	case ActionHit:
		p.Hit(t.Dealer.Deal())
		if p.Won || p.Busted {
			t.active++ // seat is done, next player
		}
	case ActionStand:
		p.Stand()
		t.active++
	default:
		return false, false
	}

	if t.checkRoundEndLocked() {
		t.setupLocked()
		return true, true
	}
	return true, false
}

// checkRoundEndLocked detects whether every seat has finished its turn, and
// if so plays out the dealer and settles the round.
func (t *Table) checkRoundEndLocked() bool {
	if t.active <= len(t.Seats) {
		return false
	}
	t.active = 1

	d := t.Dealer
	d.SecondRevealed = true
	t.roundEnding = true

	log.Printf("table %s: dealer reveals %d", t.ID, d.Total)

	for d.Total < dealerStandsAt {
		d.Hit(d.Deal())
		log.Printf("table %s: %s hits to %d", t.ID, d.Name, d.Total)
	}

	switch {
	case d.Total == 21:
		// Dealer blackjack beats everything except a seat's own 21.
		d.GamesWon++
		for _, p := range t.Seats {
			if !p.Won {
				p.GamesLost++
			}
		}
	case d.Total > 21:
		d.GamesLost++
		for _, p := range t.Seats {
			if !p.Won {
				p.GamesWon++
			}
		}
	default:
		for _, p := range t.Seats {
			if p.Won || p.Total >= 21 {
				continue
			}
			switch {
			case p.Total > d.Total:
				p.Won = true
				p.GamesWon++
				d.GamesLost++
			case d.Total > p.Total:
				d.Won = true
				p.GamesLost++
				d.GamesWon++
			default:
				// push, nobody moves
			}
		}
	}

	t.lastResults = t.lastResults[:0]
	for _, p := range t.Seats {
		t.lastResults = append(t.lastResults, RoundResult{
			Name:   p.Name,
			Wins:   p.GamesWon - p.baseWon,
			Losses: p.GamesLost - p.baseLost,
		})
	}

	return true
}

// RoundResults returns the per-seat deltas of the most recently settled
// round.
func (t *Table) RoundResults() []RoundResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]RoundResult(nil), t.lastResults...)
}

func (t *Table) seatLocked(playerID int) *Player {
	if playerID < 1 || playerID > len(t.Seats) {
		return nil
	}
	return t.Seats[playerID-1]
}

// Bind associates a connection with a seat. A previous connection for the
// same seat is superseded, which is the reconnection path: a new socket
// presenting the same seat id is legitimate re-entry.
func (t *Table) Bind(playerID int, conn Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, bc := range t.conns {
		if bc.playerID == playerID {
			t.conns[i].conn = conn
			return
		}
	}
	t.conns = append(t.conns, boundConn{conn: conn, playerID: playerID})
}

// Unbind drops the binding for a connection id, if any. Match state is left
// untouched; the seat just goes dark until a new socket binds.
func (t *Table) Unbind(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unbindLocked(connID)
}

func (t *Table) unbindLocked(connID string) {
	for i, bc := range t.conns {
		if bc.conn.ID() == connID {
			t.conns = append(t.conns[:i], t.conns[i+1:]...)
			return
		}
	}
}

// BoundConns reports how many sockets are currently bound.
func (t *Table) BoundConns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// HasConnFor reports whether the seat currently has exactly this connection
// bound.
func (t *Table) HasConnFor(playerID int, connID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, bc := range t.conns {
		if bc.playerID == playerID {
			return bc.conn.ID() == connID
		}
	}
	return false
}

// Broadcast sends a message to every bound socket. A failed send unbinds
// that socket only; delivery to the others is unaffected.
func (t *Table) Broadcast(v any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var failed []string
	for _, bc := range t.conns {
		if err := bc.conn.Send(v); err != nil {
			log.Printf("table %s: send failed on socket %s, purging: %v", t.ID, bc.conn.ID(), err)
			failed = append(failed, bc.conn.ID())
		}
	}
	for _, id := range failed {
		t.unbindLocked(id)
	}
}
