// Package sqlite stores music manager snapshots in a SQLite database, one
// row per named save slot.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/store/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it if needed, and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the snapshot to slot, replacing what the slot held.
func (s *Store) Save(ctx context.Context, slot string, snap mng.Snapshot) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return fmt.Errorf("slot is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO snapshots (slot, bundle, track, playing, mood, threat, target_mood, target_threat, volume, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
    bundle = excluded.bundle,
    track = excluded.track,
    playing = excluded.playing,
    mood = excluded.mood,
    threat = excluded.threat,
    target_mood = excluded.target_mood,
    target_threat = excluded.target_threat,
    volume = excluded.volume,
    saved_at = excluded.saved_at`,
		slot, snap.Bundle, snap.Track, snap.Playing, snap.Mood, snap.Threat,
		snap.TargetMood, snap.TargetThreat, snap.Volume, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", slot, err)
	}
	return nil
}

// Load reads the snapshot of slot. It reports false if the slot is empty.
func (s *Store) Load(ctx context.Context, slot string) (mng.Snapshot, bool, error) {
	var snap mng.Snapshot
	err := s.db.QueryRowContext(ctx, `
SELECT bundle, track, playing, mood, threat, target_mood, target_threat, volume
FROM snapshots WHERE slot = ?`, strings.TrimSpace(slot)).Scan(
		&snap.Bundle, &snap.Track, &snap.Playing, &snap.Mood, &snap.Threat,
		&snap.TargetMood, &snap.TargetThreat, &snap.Volume,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return mng.Snapshot{}, false, nil
	}
	if err != nil {
		return mng.Snapshot{}, false, fmt.Errorf("load snapshot %q: %w", slot, err)
	}
	return snap, true, nil
}

// Slots lists the saved slots, most recently saved first.
func (s *Store) Slots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot FROM snapshots ORDER BY saved_at DESC, slot`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()
	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Delete empties slot.
func (s *Store) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE slot = ?`, strings.TrimSpace(slot)); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", slot, err)
	}
	return nil
}
