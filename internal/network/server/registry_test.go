package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seth-ellison/express-blackjack/internal/apperrors"
	"github.com/seth-ellison/express-blackjack/internal/game/table"
	"github.com/seth-ellison/express-blackjack/internal/protocol"
	"github.com/seth-ellison/express-blackjack/internal/testutil"
)

// syncCount tallies how many Sync frames a fake connection received.
func syncCount(c *testutil.FakeConn) int {
	n := 0
	for _, v := range c.Sent {
		if _, ok := v.(protocol.Sync); ok {
			n++
		}
	}
	return n
}

func TestFindOrJoinCreatesThenFills(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	c2 := &testutil.FakeConn{ConnID: "conn-2"}

	gameID, playerID, created := reg.FindOrJoin("Alice", c1)
	assert.True(t, created, "empty registry always creates")
	assert.Equal(t, 1, playerID)
	require.NotEmpty(t, gameID)

	// Nothing is dealt with one seat.
	assert.Equal(t, 0, reg.Get(gameID).Round())

	gameID2, playerID2, created2 := reg.FindOrJoin("Bob", c2)
	assert.False(t, created2)
	assert.Equal(t, gameID, gameID2, "first-fit joins the open game")
	assert.Equal(t, 2, playerID2)

	// The second seat filling sets up the opening round.
	tbl := reg.Get(gameID)
	assert.Equal(t, 1, tbl.Round())
	assert.Equal(t, 2, tbl.SeatCount())
	assert.Equal(t, 2, tbl.BoundConns())
}

func TestFindOrJoinSkipsFullGames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	reg.FindOrJoin("Alice", &testutil.FakeConn{ConnID: "c1"})
	reg.FindOrJoin("Bob", &testutil.FakeConn{ConnID: "c2"})

	gameID, playerID, created := reg.FindOrJoin("Carol", &testutil.FakeConn{ConnID: "c3"})
	assert.True(t, created, "both seats taken, a new game is opened")
	assert.Equal(t, 1, playerID)
	assert.Equal(t, 2, reg.GameCount())
	assert.NotEmpty(t, gameID)
}

func TestJoinByID(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	gameID, _ := reg.CreateGame("Alice", &testutil.FakeConn{ConnID: "c1"})

	playerID, err := reg.JoinByID(gameID, "Bob", &testutil.FakeConn{ConnID: "c2"})
	require.NoError(t, err)
	assert.Equal(t, 2, playerID)
	assert.Equal(t, 1, reg.Get(gameID).Round(), "explicit join of the second seat deals the round")

	_, err = reg.JoinByID(gameID, "Carol", &testutil.FakeConn{ConnID: "c3"})
	assert.ErrorIs(t, err, apperrors.ErrGameFull)

	_, err = reg.JoinByID("no-such-game", "Dave", &testutil.FakeConn{ConnID: "c4"})
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestDispatchBroadcastsOnAccept(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	c2 := &testutil.FakeConn{ConnID: "conn-2"}
	gameID, _, _ := reg.FindOrJoin("Alice", c1)
	reg.FindOrJoin("Bob", c2)

	// Standing is always a legal action for the active seat.
	accepted, err := reg.Dispatch(gameID, 1, table.ActionStand, c1)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 1, syncCount(c1))
	assert.Equal(t, 1, syncCount(c2))

	// The second stand settles the round: one Sync for the action plus the
	// extra round-end frame.
	accepted, err = reg.Dispatch(gameID, 2, table.ActionStand, c2)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 3, syncCount(c1))
	assert.Equal(t, 3, syncCount(c2))
	assert.Equal(t, 2, reg.Get(gameID).Round())
}

func TestDispatchRejectsOutOfTurn(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	c2 := &testutil.FakeConn{ConnID: "conn-2"}
	gameID, _, _ := reg.FindOrJoin("Alice", c1)
	reg.FindOrJoin("Bob", c2)

	accepted, err := reg.Dispatch(gameID, 2, table.ActionHit, c2)
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Zero(t, syncCount(c1), "rejected actions broadcast nothing")
	assert.Zero(t, syncCount(c2))
}

func TestDispatchUnknownGame(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	_, err := reg.Dispatch("missing", 1, table.ActionHit, &testutil.FakeConn{ConnID: "c"})
	assert.ErrorIs(t, err, apperrors.ErrGameNotFound)
}

func TestDispatchRebindsReconnectingSocket(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	c2 := &testutil.FakeConn{ConnID: "conn-2"}
	gameID, _, _ := reg.FindOrJoin("Alice", c1)
	reg.FindOrJoin("Bob", c2)

	// Seat 1's socket dies and a fresh connection presents the same seat.
	reg.Unbind("conn-1")
	assert.Equal(t, 1, reg.Get(gameID).BoundConns())

	c1b := &testutil.FakeConn{ConnID: "conn-1b"}
	accepted, err := reg.Dispatch(gameID, 1, table.ActionStand, c1b)
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, 1, syncCount(c1b), "the reconnected socket is back in the broadcast set")
	assert.True(t, reg.Get(gameID).HasConnFor(1, "conn-1b"))
}

func TestUnbindLeavesGameIntact(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	gameID, _ := reg.CreateGame("Alice", c1)

	reg.Unbind("conn-1")
	tbl := reg.Get(gameID)
	require.NotNil(t, tbl)
	assert.Equal(t, 0, tbl.BoundConns())
	assert.Equal(t, 1, tbl.SeatCount())

	// Unknown connection ids are a no-op.
	reg.Unbind("never-seen")
}

func TestReapAbandonedGames(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	c1 := &testutil.FakeConn{ConnID: "conn-1"}
	c2 := &testutil.FakeConn{ConnID: "conn-2"}
	oldID, _ := reg.CreateGame("Alice", c1)
	freshID, _ := reg.CreateGame("Bob", c2)

	reg.Get(oldID).CreatedAt = time.Now().Add(-2 * time.Hour)
	reg.Get(freshID).CreatedAt = time.Now().Add(-2 * time.Hour)

	// Still observed: nothing is reaped while sockets are bound.
	assert.Zero(t, reg.ReapAbandoned(time.Hour))

	reg.Unbind("conn-1")
	assert.Equal(t, 1, reg.ReapAbandoned(time.Hour))
	assert.Nil(t, reg.Get(oldID))
	assert.NotNil(t, reg.Get(freshID))
}
