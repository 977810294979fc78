// Package archive keeps a local read-model of analyzed diary entries so the
// review and search commands work without refetching month by month. It is a
// cache of server state, not a write queue; the backend stays authoritative.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/innercanvas/innercanvas/internal/diary"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	date        TEXT PRIMARY KEY,
	diary_id    INTEGER NOT NULL,
	text        TEXT NOT NULL,
	mood_color  TEXT NOT NULL DEFAULT '',
	emotion     TEXT NOT NULL DEFAULT '',
	counseling  TEXT NOT NULL DEFAULT '',
	updated_at  INTEGER NOT NULL
);
`

// Record is one archived entry keyed by its diary date.
type Record struct {
	Date       string
	DiaryID    int
	Text       string
	MoodColor  string
	Emotion    string
	Counseling string
	UpdatedAt  time.Time
}

// Archive is the sqlite store plus its full-text index.
type Archive struct {
	db    *sql.DB
	index *searchIndex
}

// Open creates or opens the archive under dir.
func Open(ctx context.Context, dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// WAL keeps the REPL responsive while the index catches up.
	dsn := filepath.Join(dir, "archive.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	index, err := openSearchIndex(filepath.Join(dir, "archive.bleve"))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Archive{db: db, index: index}, nil
}

// Close releases the database and index.
func (a *Archive) Close() error {
	ierr := a.index.Close()
	derr := a.db.Close()
	if ierr != nil {
		return ierr
	}
	return derr
}

// SaveEntry upserts an analyzed or freshly loaded entry. Drafts without text
// are skipped.
func (a *Archive) SaveEntry(ctx context.Context, date string, entry diary.Entry, emotion string) error {
	if entry.DiaryText == "" {
		return nil
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO entries (date, diary_id, text, mood_color, emotion, counseling, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			diary_id = excluded.diary_id,
			text = excluded.text,
			mood_color = excluded.mood_color,
			emotion = excluded.emotion,
			counseling = excluded.counseling,
			updated_at = excluded.updated_at`,
		date, entry.DiaryID, entry.DiaryText, entry.MoodColor, emotion,
		entry.AICounselingText, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert archive entry: %w", err)
	}

	return a.index.indexEntry(date, entry.DiaryText, entry.AICounselingText, emotion)
}

// ByDate returns the archived entry for a date, or nil when absent.
func (a *Archive) ByDate(ctx context.Context, date string) (*Record, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT date, diary_id, text, mood_color, emotion, counseling, updated_at
		FROM entries WHERE date = ?`, date)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive entry: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit entries, newest date first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT date, diary_id, text, mood_color, emotion, counseling, updated_at
		FROM entries ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive entries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive entry: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var updatedAt int64
	if err := s.Scan(&rec.Date, &rec.DiaryID, &rec.Text, &rec.MoodColor,
		&rec.Emotion, &rec.Counseling, &updatedAt); err != nil {
		return nil, err
	}
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}
