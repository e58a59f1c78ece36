/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package previews caches rendered frame thumbnails in a local SQLite
// database with least-recently-used eviction.
package previews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	alog "animview/internal/log"
	"animview/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "previews.sqlite"

	// KindThumb rows hold PNG thumbnails.
	KindThumb = "thumb"

	// DefaultMaxBytes caps the cache when neither config nor env sets it.
	DefaultMaxBytes int64 = 256 * 1024 * 1024

	schemaVersion = 2
)

// Key identifies one cached variant of a frame. Rev is the frame content
// revision the blob was rendered from.
type Key struct {
	FrameID string
	Kind    string
	W, H    int
	Rev     string
}

func (k Key) validate() error {
	if strings.TrimSpace(k.FrameID) == "" {
		return errors.New("preview key: frame id is required")
	}
	if k.Kind != KindThumb {
		return fmt.Errorf("preview key: invalid kind %q", k.Kind)
	}
	return nil
}

// Store is a previews database. It is safe for concurrent use; SQLite access
// is serialized over a single connection.
type Store struct {
	db       *sql.DB
	path     string
	maxBytes int64
	log      *slog.Logger
}

// Path returns the database path inside dir.
func Path(dir string) string { return filepath.Join(dir, FileName) }

// Open creates or opens the cache in dir. maxBytes <= 0 disables eviction.
func Open(ctx context.Context, dir string, maxBytes int64) (*Store, error) {
	l := alog.WithOperation(alog.WithComponent("previews"), "open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("previews dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create cache dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	path := Path(dir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("previews ready", slog.String("path", path), slog.Int64("max_bytes", maxBytes))
	return &Store{db: db, path: path, maxBytes: maxBytes, log: alog.WithComponent("previews")}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

func ensureSchema(ctx context.Context, db *sql.DB) error {
	// v1 rows carry no revision and can never be served again
	var have int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&have); err == nil && have < schemaVersion {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS previews`); err != nil {
			return fmt.Errorf("drop old previews: %w", err)
		}
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			id           INTEGER PRIMARY KEY,
			frame_id     TEXT    NOT NULL,
			kind         TEXT    NOT NULL DEFAULT 'thumb',
			w            INTEGER NOT NULL DEFAULT 0,
			h            INTEGER NOT NULL DEFAULT 0,
			rev          TEXT    NOT NULL DEFAULT '',
			blob         BLOB    NOT NULL,
			size         INTEGER NOT NULL DEFAULT 0,
			updated_at   TEXT    NOT NULL,
			last_access  TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(frame_id, kind, w, h)`,
		`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access)`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	now := timestamp()
	if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET schema=excluded.schema, app=excluded.app, updated_at=excluded.updated_at`,
		schemaVersion, version.String(), now, now); err != nil {
		return fmt.Errorf("upsert version: %w", err)
	}
	return nil
}

// timestamp sorts lexically in time order.
func timestamp() string { return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z") }

// Get returns the cached blob for k and marks it as used. A miss returns
// nil and no error. Finding a blob of another revision drops every variant
// of the frame, since all of them are out of date.
func (s *Store) Get(ctx context.Context, k Key) ([]byte, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	var (
		blob []byte
		rev  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT blob, rev FROM previews WHERE frame_id=? AND kind=? AND w=? AND h=?`,
		k.FrameID, k.Kind, k.W, k.H).Scan(&blob, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	if rev != k.Rev {
		if err := s.Delete(ctx, k.FrameID); err != nil {
			return nil, err
		}
		s.log.DebugContext(ctx, "dropped stale previews", slog.String("frame", k.FrameID), slog.String("rev", rev))
		return nil, nil
	}
	// touch
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE frame_id=? AND kind=? AND w=? AND h=?`,
		timestamp(), k.FrameID, k.Kind, k.W, k.H)
	return blob, nil
}

// Put upserts a blob and evicts least-recently-used rows over the cap.
func (s *Store) Put(ctx context.Context, k Key, blob []byte) error {
	if err := k.validate(); err != nil {
		return err
	}
	now := timestamp()
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(frame_id,kind,w,h,rev,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(frame_id,kind,w,h) DO UPDATE SET rev=excluded.rev, blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		k.FrameID, k.Kind, k.W, k.H, k.Rev, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if s.maxBytes > 0 {
		return s.EvictToFit(ctx, s.maxBytes)
	}
	return nil
}

// GetOrCreate returns the cached blob or generates, stores and returns it.
func (s *Store) GetOrCreate(ctx context.Context, k Key, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := s.Get(ctx, k); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := s.Put(ctx, k, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Delete drops every variant of a frame.
func (s *Store) Delete(ctx context.Context, frameID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM previews WHERE frame_id=?`, frameID); err != nil {
		return fmt.Errorf("delete previews: %w", err)
	}
	return nil
}

// EvictToFit deletes least-recently-used rows until the total size is at
// most capBytes.
func (s *Store) EvictToFit(ctx context.Context, capBytes int64) error {
	total, err := s.TotalBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// close the cursor before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (?` + strings.Repeat(",?", len(victims)-1) + ")"
	if _, err := s.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	s.log.Debug("evicted previews", slog.Int("rows", len(victims)), slog.Int64("bytes", total-cur))
	return nil
}

// TotalBytes is the sum of cached blob sizes.
func (s *Store) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// Count is the number of cached rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM previews`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count previews: %w", err)
	}
	return n, nil
}

// MaxBytesFromEnv reads AV_PREVIEWS_MAX_BYTES, defaulting to DefaultMaxBytes.
func MaxBytesFromEnv() int64 {
	v := os.Getenv("AV_PREVIEWS_MAX_BYTES")
	if v == "" {
		return DefaultMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return DefaultMaxBytes
	}
	return n
}
