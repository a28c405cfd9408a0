package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLock holds a session-scoped PostgreSQL advisory lock on a
// dedicated pooled connection. Not safe for concurrent use; one instance
// guards one lock at a time.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
	key  int64
}

// NewAdvisoryLock creates an AdvisoryLock on the given pool.
func NewAdvisoryLock(pool *pgxpool.Pool) *AdvisoryLock {
	return &AdvisoryLock{pool: pool}
}

// TryLock attempts to take the lock without blocking. Returns false when
// another session already holds it. The underlying connection is pinned
// until Unlock, since advisory locks are session-scoped.
func (l *AdvisoryLock) TryLock(ctx context.Context, key int64) (bool, error) {
	if l.conn != nil {
		return false, fmt.Errorf("advisory lock %d already held", l.key)
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&acquired); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	l.key = key

	return true, nil
}

// Unlock releases the lock and returns the connection to the pool.
// A no-op when the lock is not held.
func (l *AdvisoryLock) Unlock(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}

	_, err := l.conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, l.key)
	l.conn.Release()
	l.conn = nil

	if err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}

	return nil
}
