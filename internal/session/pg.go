package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists sessions in Postgres. Schema:
//
//	CREATE TABLE admin_sessions (
//	    id         TEXT PRIMARY KEY,
//	    state      JSONB NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
type PGStore struct {
	DB  *pgxpool.Pool
	TTL time.Duration
}

func NewPGStore(db *pgxpool.Pool, ttl time.Duration) *PGStore {
	return &PGStore{DB: db, TTL: ttl}
}

func (p *PGStore) Get(ctx context.Context, id string) (*State, error) {
	var b []byte
	err := p.DB.QueryRow(ctx, `
		SELECT state FROM admin_sessions WHERE id=$1 AND expires_at > now()
	`, id).Scan(&b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PGStore) Put(ctx context.Context, id string, s *State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = p.DB.Exec(ctx, `
		INSERT INTO admin_sessions (id, state, expires_at)
		VALUES ($1, $2, now() + $3)
		ON CONFLICT (id) DO UPDATE SET state=$2, expires_at=now() + $3
	`, id, b, p.TTL)
	return err
}

func (p *PGStore) Delete(ctx context.Context, id string) error {
	_, err := p.DB.Exec(ctx, `DELETE FROM admin_sessions WHERE id=$1`, id)
	return err
}
