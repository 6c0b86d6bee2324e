package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *StatsStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStatsStore(client)
}

func TestRecordRoundAccumulates(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRound(ctx, []RoundRecord{
		{Name: "Seth", Wins: 1},
		{Name: "Ollie", Losses: 1},
	}))
	require.NoError(t, store.RecordRound(ctx, []RoundRecord{
		{Name: "Seth", Wins: 1},
		{Name: "Ollie", Wins: 1},
	}))

	seth, err := store.GetStats(ctx, "Seth")
	require.NoError(t, err)
	require.NotNil(t, seth)
	assert.Equal(t, 2, seth.GamesWon)
	assert.Zero(t, seth.GamesLost)
	assert.NotZero(t, seth.LastPlayedAt)

	ollie, err := store.GetStats(ctx, "Ollie")
	require.NoError(t, err)
	require.NotNil(t, ollie)
	assert.Equal(t, 1, ollie.GamesWon)
	assert.Equal(t, 1, ollie.GamesLost)
}

func TestRecordRoundSkipsPushes(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRound(ctx, []RoundRecord{{Name: "Seth"}}))

	stats, err := store.GetStats(ctx, "Seth")
	require.NoError(t, err)
	assert.Nil(t, stats, "a push should leave no trace")
}

func TestGetStatsUnknownPlayer(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	stats, err := store.GetStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestTopPlayers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordRound(ctx, []RoundRecord{
		{Name: "Seth", Wins: 3},
		{Name: "Ollie", Wins: 1},
		{Name: "Max", Wins: 2},
	}))

	top, err := store.TopPlayers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, LeaderboardEntry{Rank: 1, Name: "Seth", GamesWon: 3}, top[0])
	assert.Equal(t, LeaderboardEntry{Rank: 2, Name: "Max", GamesWon: 2}, top[1])
}

func TestTopPlayersEmptyBoard(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	top, err := store.TopPlayers(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
