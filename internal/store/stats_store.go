package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStats struct {
	UserID       string
	Wins         int
	Losses       int
	TotalGuesses int
	BestGuesses  int // fewest guesses in a won game; 0 if none
	UpdatedAt    time.Time
}

type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) InitForUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// RecordResult adds one finished game. A resignation counts as a loss.
func (s *StatsStore) RecordResult(ctx context.Context, userID string, won bool, guesses int) error {
	var wins, losses, best int
	if won {
		wins = 1
		best = guesses
	} else {
		losses = 1
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (user_id, wins, losses, total_guesses, best_guesses, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), now())
		ON CONFLICT (user_id) DO UPDATE SET
			wins          = player_stats.wins + EXCLUDED.wins,
			losses        = player_stats.losses + EXCLUDED.losses,
			total_guesses = player_stats.total_guesses + EXCLUDED.total_guesses,
			best_guesses  = LEAST(player_stats.best_guesses, EXCLUDED.best_guesses),
			updated_at    = now()
	`, userID, wins, losses, guesses, best)
	return err
}

func (s *StatsStore) Get(ctx context.Context, userID string) (PlayerStats, error) {
	var st PlayerStats
	var best *int
	err := s.db.QueryRow(ctx, `
		SELECT user_id, wins, losses, total_guesses, best_guesses, updated_at
		FROM player_stats
		WHERE user_id=$1
	`, userID).Scan(&st.UserID, &st.Wins, &st.Losses, &st.TotalGuesses, &best, &st.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// no stats yet: zeros
		return PlayerStats{UserID: userID}, nil
	}
	if err != nil {
		return PlayerStats{}, err
	}
	if best != nil {
		st.BestGuesses = *best
	}
	return st, nil
}
