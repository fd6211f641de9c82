package chatstore

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"rtcrelaygo/internal/chat"
)

// Store persists chat batches to Postgres and serves history reads.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

// BulkInsert writes one drained batch in a single transaction. The
// caller treats any error as a dropped batch; there is no retry path.
func (s *Store) BulkInsert(ctx context.Context, msgs []chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `INSERT INTO chat_messages (type, recipient, group_name, data, received_at)
	             VALUES ($1, $2, $3, $4, $5)`
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, ins,
			m.Type, m.To, m.GroupName, m.Data, m.Date); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	zap.L().Debug("chatstore.flushed", zap.Int("count", len(msgs)))
	return nil
}

// Recent returns the newest limit messages, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `SELECT type, recipient, group_name, data, received_at
	             FROM chat_messages
	         ORDER BY received_at DESC
	            LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]chat.Message, 0, limit)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.Type, &m.To, &m.GroupName, &m.Data, &m.Date); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
