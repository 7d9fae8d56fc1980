// internal/database/actions.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/yaniv/internal/cache"
)

// InsertActions writes a batch of journaled commands in a single transaction.
// Replays of the same record are ignored.
func (s *ResultStore) InsertActions(ctx context.Context, recs []cache.ActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		q := `
			INSERT INTO yaniv_actions (room_id, action_index, actor, action_type, action_payload, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`
		for _, rec := range recs {
			var payload any
			if len(rec.ActionPayload) > 0 {
				payload = string(rec.ActionPayload)
			}
			batch.Queue(q, rec.RoomID, rec.ActionIndex, rec.Actor, rec.ActionType, payload, time.UnixMilli(rec.Timestamp))
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("tx insert %d actions: %w", len(recs), err)
	}
	return nil
}

// RoomActions returns the journaled commands for roomID in the order they were applied.
func (s *ResultStore) RoomActions(ctx context.Context, roomID string) ([]cache.ActionRecord, error) {
	q := `
		SELECT room_id, action_index, actor, action_type, COALESCE(action_payload::text, ''), recorded_at
		FROM yaniv_actions
		WHERE room_id = $1
		ORDER BY recorded_at, action_index
	`
	rows, err := s.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("query room actions: %w", err)
	}
	defer rows.Close()

	var out []cache.ActionRecord
	for rows.Next() {
		var (
			rec     cache.ActionRecord
			payload string
			at      time.Time
		)
		if err := rows.Scan(&rec.RoomID, &rec.ActionIndex, &rec.Actor, &rec.ActionType, &payload, &at); err != nil {
			return nil, fmt.Errorf("scan room action: %w", err)
		}
		if payload != "" {
			rec.ActionPayload = []byte(payload)
		}
		rec.Timestamp = at.UnixMilli()
		out = append(out, rec)
	}
	return out, rows.Err()
}
