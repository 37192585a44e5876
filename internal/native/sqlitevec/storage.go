// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package sqlitevec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/otama-dev/otama-go/internal/native"
)

// tables holds the namespaced table names of one engine configuration.
type tables struct {
	entries string
	vectors string
}

func tablesFor(namespace string) tables {
	return tables{
		entries: namespace + "_entries",
		vectors: namespace + "_vectors",
	}
}

// MaxNeighbors is the largest k a vec0 KNN query accepts. Larger search
// limits are clamped; callers get every row the index can return.
const MaxNeighbors = 4096

type match struct {
	id       native.ID
	distance float32
}

func (c *conn) create(ctx context.Context) error {
	entriesDDL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	id     BLOB NOT NULL,
	vector BLOB NOT NULL,
	pulled INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_id ON %[1]s(id);
CREATE INDEX IF NOT EXISTS idx_%[1]s_pulled ON %[1]s(pulled)`, c.tables.entries)
	if _, err := c.db.ExecContext(ctx, entriesDDL); err != nil {
		return fmt.Errorf("creating entries table: %w", err)
	}

	vecDDL := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.tables.vectors, Dimensions,
	)
	if _, err := c.db.ExecContext(ctx, vecDDL); err != nil {
		return fmt.Errorf("creating vectors virtual table: %w", err)
	}

	return nil
}

func (c *conn) drop(ctx context.Context) error {
	for _, name := range []string{c.tables.vectors, c.tables.entries} {
		if _, err := c.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+name); err != nil {
			return fmt.Errorf("dropping %s: %w", name, err)
		}
	}
	return nil
}

// ready reports errNoDatabase until create has run.
func (c *conn) ready(ctx context.Context) error {
	var n int
	const q = `SELECT COUNT(*) FROM sqlite_master WHERE name IN (?, ?)`
	if err := c.db.QueryRowContext(ctx, q, c.tables.entries, c.tables.vectors).Scan(&n); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if n < 2 {
		return errNoDatabase
	}
	return nil
}

func (c *conn) insert(ctx context.Context, id native.ID, vec []float32) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return fmt.Errorf("serializing fingerprint: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s(id, vector) VALUES (?, ?)`, c.tables.entries)
	if _, err := c.db.ExecContext(ctx, q, id[:], blob); err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}
	return nil
}

// pull moves every staged entry into the vec0 index.
func (c *conn) pull(ctx context.Context) error {
	if err := c.ready(ctx); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`SELECT seq, vector FROM %s WHERE pulled = 0 ORDER BY seq`, c.tables.entries))
	if err != nil {
		return fmt.Errorf("listing pending entries: %w", err)
	}

	type pending struct {
		seq  int64
		blob []byte
	}
	var batch []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.seq, &p.blob); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scanning pending entry: %w", err)
		}
		batch = append(batch, p)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterating pending entries: %w", err)
	}
	_ = rows.Close()

	ins := fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, c.tables.vectors)
	for _, p := range batch {
		if _, err := tx.ExecContext(ctx, ins, p.seq, p.blob); err != nil {
			return fmt.Errorf("indexing entry %d: %w", p.seq, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET pulled = 1 WHERE pulled = 0`, c.tables.entries)); err != nil {
		return fmt.Errorf("marking entries pulled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pull: %w", err)
	}
	return nil
}

func (c *conn) remove(ctx context.Context, id native.ID) error {
	if err := c.ready(ctx); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	delVec := fmt.Sprintf(`DELETE FROM %s WHERE rowid IN (SELECT seq FROM %s WHERE id = ? AND pulled = 1)`,
		c.tables.vectors, c.tables.entries)
	if _, err := tx.ExecContext(ctx, delVec, id[:]); err != nil {
		return fmt.Errorf("deleting indexed vectors: %w", err)
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, c.tables.entries), id[:])
	if err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing remove: %w", err)
	}
	return nil
}

func (c *conn) exists(ctx context.Context, id native.ID) (bool, error) {
	if err := c.ready(ctx); err != nil {
		return false, err
	}
	var found bool
	q := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)`, c.tables.entries)
	if err := c.db.QueryRowContext(ctx, q, id[:]).Scan(&found); err != nil {
		return false, fmt.Errorf("checking entry: %w", err)
	}
	return found, nil
}

func (c *conn) count(ctx context.Context) (int64, error) {
	if err := c.ready(ctx); err != nil {
		return 0, err
	}
	var n int64
	if err := c.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, c.tables.entries)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// vector loads the fingerprint of the most recent entry stored under id.
func (c *conn) vector(ctx context.Context, id native.ID) ([]float32, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	var blob []byte
	q := fmt.Sprintf(`SELECT vector FROM %s WHERE id = ? ORDER BY seq DESC LIMIT 1`, c.tables.entries)
	if err := c.db.QueryRowContext(ctx, q, id[:]).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("loading fingerprint: %w", err)
	}
	return deserializeFloat32(blob)
}

// knn returns up to k pulled entries closest to vec, nearest first.
func (c *conn) knn(ctx context.Context, vec []float32, k int) ([]match, error) {
	if err := c.ready(ctx); err != nil {
		return nil, err
	}
	k = min(k, MaxNeighbors)
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return nil, fmt.Errorf("serializing query fingerprint: %w", err)
	}

	q := fmt.Sprintf(`SELECT e.id, v.distance
FROM %s v
LEFT JOIN %s e ON e.seq = v.rowid
WHERE v.embedding MATCH ? AND k = ?
ORDER BY v.distance`, c.tables.vectors, c.tables.entries)

	rows, err := c.db.QueryContext(ctx, q, blob, k)
	if err != nil {
		return nil, fmt.Errorf("searching vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []match
	for rows.Next() {
		var (
			raw []byte
			m   match
		)
		if err := rows.Scan(&raw, &m.distance); err != nil {
			return nil, fmt.Errorf("scanning vector result: %w", err)
		}
		if len(raw) != native.IDLen {
			return nil, fmt.Errorf("stored id has %d bytes, want %d", len(raw), native.IDLen)
		}
		copy(m.id[:], raw)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vector results: %w", err)
	}

	return matches, nil
}
