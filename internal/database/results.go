// internal/database/results.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/yaniv/internal/game"
)

// Connect opens a pgx pool against url and pings it.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS yaniv_rounds (
	id         UUID PRIMARY KEY,
	room_id    TEXT NOT NULL,
	declarer   TEXT NOT NULL,
	winner     TEXT NOT NULL,
	verdict    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS yaniv_rounds_room_idx ON yaniv_rounds (room_id, created_at DESC);
CREATE TABLE IF NOT EXISTS yaniv_round_totals (
	round_id UUID NOT NULL REFERENCES yaniv_rounds (id) ON DELETE CASCADE,
	player   TEXT NOT NULL,
	total    INT  NOT NULL,
	PRIMARY KEY (round_id, player)
);
CREATE TABLE IF NOT EXISTS yaniv_actions (
	room_id        TEXT   NOT NULL,
	action_index   INT    NOT NULL,
	actor          TEXT   NOT NULL,
	action_type    TEXT   NOT NULL,
	action_payload JSONB,
	recorded_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (room_id, recorded_at, action_index)
);
`

// RoundRecord is one persisted round result.
type RoundRecord struct {
	ID        uuid.UUID      `json:"id"`
	RoomID    string         `json:"roomId"`
	Declarer  string         `json:"declarer"`
	Winner    string         `json:"winner"`
	Verdict   string         `json:"verdict"`
	Totals    map[string]int `json:"totals"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ResultStore persists resolved Yaniv declarations.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

// EnsureSchema creates the result and action tables if they are missing.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordRoundResult writes the round and every player's total in one transaction.
func (s *ResultStore) RecordRoundResult(ctx context.Context, res game.RoundResult) (uuid.UUID, error) {
	id := uuid.New()
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO yaniv_rounds (id, room_id, declarer, winner, verdict)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, q, id, res.RoomID, res.Declarer, res.Winner, string(res.Verdict)); err != nil {
			return err
		}
		for _, t := range res.Totals {
			q := `INSERT INTO yaniv_round_totals (round_id, player, total) VALUES ($1, $2, $3)`
			if _, err := tx.Exec(ctx, q, id, t.Player, t.Total); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("tx insert round result: %w", err)
	}
	return id, nil
}

// ScoreHistory returns up to limit of the most recent rounds played in roomID, newest first.
func (s *ResultStore) ScoreHistory(ctx context.Context, roomID string, limit int) ([]RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
		SELECT r.id, r.room_id, r.declarer, r.winner, r.verdict, r.created_at, t.player, t.total
		FROM (
			SELECT * FROM yaniv_rounds WHERE room_id = $1 ORDER BY created_at DESC LIMIT $2
		) r
		LEFT JOIN yaniv_round_totals t ON t.round_id = r.id
		ORDER BY r.created_at DESC, t.player
	`
	rows, err := s.pool.Query(ctx, q, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var out []RoundRecord
	for rows.Next() {
		var (
			rec    RoundRecord
			player *string
			total  *int
		)
		if err := rows.Scan(&rec.ID, &rec.RoomID, &rec.Declarer, &rec.Winner, &rec.Verdict, &rec.CreatedAt, &player, &total); err != nil {
			return nil, fmt.Errorf("scan score history: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != rec.ID {
			rec.Totals = make(map[string]int)
			out = append(out, rec)
		}
		if player != nil && total != nil {
			out[len(out)-1].Totals[*player] = *total
		}
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *ResultStore) Close() {
	s.pool.Close()
}
