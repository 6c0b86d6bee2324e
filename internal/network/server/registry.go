package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seth-ellison/express-blackjack/internal/apperrors"
	"github.com/seth-ellison/express-blackjack/internal/game/table"
	"github.com/seth-ellison/express-blackjack/internal/protocol"
	"github.com/seth-ellison/express-blackjack/internal/storage"
)

// Registry owns the game-id → table mapping and the matchmaking scan. It is
// the only writer of seats and socket bindings, under one coarse lock, so
// find-or-join's read-then-write can never race a concurrent create.
type Registry struct {
	mu     sync.Mutex
	games  map[string]*table.Table
	order  []string          // insertion order, keeps first-fit deterministic
	byConn map[string]string // connection id → game id

	stats *storage.StatsStore // optional, nil disables recording
}

// NewRegistry creates an empty registry. stats may be nil.
func NewRegistry(stats *storage.StatsStore) *Registry {
	return &Registry{
		games:  make(map[string]*table.Table),
		byConn: make(map[string]string),
		stats:  stats,
	}
}

// CreateGame allocates a new table and seats the requester in seat 1.
func (r *Registry) CreateGame(name string, conn table.Conn) (gameID string, playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(name, conn)
}

func (r *Registry) createLocked(name string, conn table.Conn) (string, int) {
	id := uuid.New().String()
	t := table.New(id, nil)
	playerID, _ := t.AddPlayer(name)
	t.Bind(playerID, conn)

	r.games[id] = t
	r.order = append(r.order, id)
	r.byConn[conn.ID()] = id

	log.Printf("🃏 game %s created for %s", id, name)
	return id, playerID
}

// FindOrJoin joins the first open game, or creates one when none is open.
// Filling the second seat sets up the opening round; the caller is expected
// to broadcast the snapshot after its private reply.
func (r *Registry) FindOrJoin(name string, conn table.Conn) (gameID string, playerID int, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		t := r.games[id]
		if t.SeatCount() >= table.MaxSeats {
			continue
		}
		playerID, _ = t.AddPlayer(name)
		t.Bind(playerID, conn)
		r.byConn[conn.ID()] = id

		log.Printf("🃏 %s joined game %s as player %d", name, id, playerID)
		t.Setup()
		return id, playerID, false
	}

	gameID, playerID = r.createLocked(name, conn)
	return gameID, playerID, true
}

// JoinByID joins a specific game. Unknown ids fail with ErrGameNotFound and
// full games with ErrGameFull.
func (r *Registry) JoinByID(gameID, name string, conn table.Conn) (playerID int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.games[gameID]
	if !ok {
		return 0, apperrors.ErrGameNotFound
	}
	playerID, ok = t.AddPlayer(name)
	if !ok {
		return 0, apperrors.ErrGameFull
	}
	t.Bind(playerID, conn)
	r.byConn[conn.ID()] = gameID

	log.Printf("🃏 %s joined game %s as player %d", name, gameID, playerID)
	t.Setup()
	return playerID, nil
}

// Dispatch applies a turn action. The presented connection is bound to the
// seat first, superseding any previous socket — the reconnection path. On
// acceptance the snapshot is broadcast, plus an extra frame when the action
// settled the round.
func (r *Registry) Dispatch(gameID string, playerID int, action table.Action, conn table.Conn) (accepted bool, err error) {
	r.mu.Lock()
	t, ok := r.games[gameID]
	if !ok {
		r.mu.Unlock()
		return false, apperrors.ErrGameNotFound
	}
	t.Bind(playerID, conn)
	r.byConn[conn.ID()] = gameID
	r.mu.Unlock()

	accepted, roundEnded := t.Accept(playerID, action)
	if !accepted {
		return false, nil
	}

	t.Broadcast(protocol.NewSync(t.Snapshot()))
	if roundEnded {
		t.Broadcast(protocol.NewSync(t.Snapshot()))
		r.recordRound(t)
	}
	return true, nil
}

// SyncGame broadcasts the current snapshot to every socket bound to a game.
func (r *Registry) SyncGame(gameID string) {
	r.mu.Lock()
	t, ok := r.games[gameID]
	r.mu.Unlock()
	if ok {
		t.Broadcast(protocol.NewSync(t.Snapshot()))
	}
}

// Unbind drops the socket association on disconnect. Match state is not
// mutated; the seat waits for a reconnecting socket.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	gameID, ok := r.byConn[connID]
	if ok {
		delete(r.byConn, connID)
	}
	t := r.games[gameID]
	r.mu.Unlock()

	if ok && t != nil {
		t.Unbind(connID)
	}
}

// GameCount reports how many games the registry holds.
func (r *Registry) GameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

// Get looks up a table by game id.
func (r *Registry) Get(gameID string) *table.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[gameID]
}

// recordRound persists the settled round's deltas, fire-and-forget.
func (r *Registry) recordRound(t *table.Table) {
	if r.stats == nil {
		return
	}
	results := t.RoundResults()
	records := make([]storage.RoundRecord, 0, len(results))
	for _, res := range results {
		records = append(records, storage.RoundRecord{Name: res.Name, Wins: res.Wins, Losses: res.Losses})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.stats.RecordRound(ctx, records); err != nil {
			log.Printf("stats: record round failed: %v", err)
		}
	}()
}

// ReapAbandoned removes games that have had no bound sockets for longer than
// the threshold. Returns how many were reaped.
func (r *Registry) ReapAbandoned(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	reaped := 0
	kept := r.order[:0]
	for _, id := range r.order {
		t := r.games[id]
		if t.BoundConns() == 0 && t.CreatedAt.Before(cutoff) {
			delete(r.games, id)
			reaped++
			log.Printf("🧹 reaped abandoned game %s", id)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return reaped
}

// StartReaper runs the abandoned-game policy loop until stop is closed.
// A zero threshold disables reaping entirely.
func (r *Registry) StartReaper(interval, olderThan time.Duration, stop <-chan struct{}) {
	if olderThan <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.ReapAbandoned(olderThan)
			case <-stop:
				return
			}
		}
	}()
}
