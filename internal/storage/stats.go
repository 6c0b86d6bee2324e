package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefixes
	playerStatsKey = "player:stats:"
	leaderboardKey = "leaderboard:wins"
)

// PlayerStats are a player's cumulative results across all matches. Players
// are keyed by display name; the server does not verify identity.
type PlayerStats struct {
	Name         string `json:"name"`
	GamesWon     int    `json:"games_won"`
	GamesLost    int    `json:"games_lost"`
	LastPlayedAt int64  `json:"last_played_at"`
}

// LeaderboardEntry is one row of the wins leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	GamesWon int    `json:"games_won"`
}

// RoundRecord is one player's delta from a settled round.
type RoundRecord struct {
	Name   string
	Wins   int
	Losses int
}

// StatsStore persists per-player win/loss tallies and a wins leaderboard in
// Redis. It records deltas only; match state itself is never persisted.
type StatsStore struct {
	client *redis.Client
}

// NewStatsStore wraps a Redis client.
func NewStatsStore(client *redis.Client) *StatsStore {
	return &StatsStore{client: client}
}

// RecordRound applies one settled round's deltas.
func (s *StatsStore) RecordRound(ctx context.Context, records []RoundRecord) error {
	now := time.Now().Unix()
	pipe := s.client.Pipeline()
	for _, r := range records {
		if r.Wins == 0 && r.Losses == 0 {
			continue // push, nothing to record
		}
		key := playerStatsKey + r.Name
		if r.Wins != 0 {
			pipe.HIncrBy(ctx, key, "games_won", int64(r.Wins))
			pipe.ZIncrBy(ctx, leaderboardKey, float64(r.Wins), r.Name)
		}
		if r.Losses != 0 {
			pipe.HIncrBy(ctx, key, "games_lost", int64(r.Losses))
		}
		pipe.HSet(ctx, key, "last_played_at", now)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}

// GetStats loads one player's tallies. A player never seen returns nil.
func (s *StatsStore) GetStats(ctx context.Context, name string) (*PlayerStats, error) {
	fields, err := s.client.HGetAll(ctx, playerStatsKey+name).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	stats := &PlayerStats{Name: name}
	stats.GamesWon, _ = strconv.Atoi(fields["games_won"])
	stats.GamesLost, _ = strconv.Atoi(fields["games_lost"])
	stats.LastPlayedAt, _ = strconv.ParseInt(fields["last_played_at"], 10, 64)
	return stats, nil
}

// TopPlayers returns the top n players by total wins.
func (s *StatsStore) TopPlayers(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	rows, err := s.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		name, _ := row.Member.(string)
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			Name:     name,
			GamesWon: int(row.Score),
		})
	}
	return entries, nil
}
