package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/octaai/octaplay/internal/db"
	"github.com/octaai/octaplay/internal/playlist"
)

// Session is the saved playback session.
type Session struct {
	CurrentID string // empty if nothing was loaded
	Position  time.Duration
	Volume    float64
	Repeat    bool
	Shuffle   bool
	Tracks    []playlist.Track
	SavedAt   time.Time
}

func getSession(ctx context.Context, db *sql.DB) (*Session, error) {
	var (
		s          Session
		currentID  sql.NullString
		positionMS int64
		savedAt    int64
	)
	row := db.QueryRowContext(ctx, `
		SELECT current_track_id, position_ms, volume, repeat, shuffle, saved_at
		FROM session_state WHERE id = 1
	`)
	err := row.Scan(&currentID, &positionMS, &s.Volume, &s.Repeat, &s.Shuffle, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CurrentID = dbutil.NullStringValue(currentID)
	s.Position = time.Duration(positionMS) * time.Millisecond
	s.SavedAt = time.UnixMilli(savedAt)

	rows, err := db.QueryContext(ctx, `
		SELECT track_id, title, artist, artwork, source, duration_ms
		FROM session_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t               playlist.Track
			artist, artwork sql.NullString
			durationMS      sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &artist, &artwork, &t.Source, &durationMS); err != nil {
			return nil, err
		}
		t.Artist = dbutil.NullStringValue(artist)
		t.Artwork = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(dbutil.NullInt64Value(durationMS)) * time.Millisecond
		s.Tracks = append(s.Tracks, t)
	}
	return &s, rows.Err()
}

func saveSession(ctx context.Context, sqlDB *sql.DB, s Session) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}

	return dbutil.WithTx(ctx, sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_tracks`); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_state (id, current_track_id, position_ms, volume, repeat, shuffle, saved_at)
			VALUES (1, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_track_id = excluded.current_track_id,
				position_ms = excluded.position_ms,
				volume = excluded.volume,
				repeat = excluded.repeat,
				shuffle = excluded.shuffle,
				saved_at = excluded.saved_at
		`, dbutil.NullString(s.CurrentID), s.Position.Milliseconds(), s.Volume, s.Repeat, s.Shuffle, s.SavedAt.UnixMilli())
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO session_tracks (position, track_id, title, artist, artwork, source, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range s.Tracks {
			_, err := stmt.ExecContext(ctx, i, t.ID, t.Title,
				dbutil.NullString(t.Artist), dbutil.NullString(t.Artwork),
				t.Source, t.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
