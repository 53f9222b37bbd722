// Package store handles SQLite persistence of imported datasets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrDatasetNotFound is returned when no dataset with the given name is cached.
var ErrDatasetNotFound = errors.New("dataset not found")

// Store wraps SQLite access for cached datasets.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			source_url TEXT NOT NULL,
			columns TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pitches (
			dataset_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			pitch_type TEXT NOT NULL,
			player_name TEXT NOT NULL,
			p_throws TEXT NOT NULL,
			arm_angle REAL,
			hb REAL,
			ivb REAL,
			release_speed REAL,
			release_spin_rate REAL,
			xwoba REAL,
			release_extension REAL,
			release_pos_z REAL,
			PRIMARY KEY (dataset_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pitches_player ON pitches(dataset_id, player_name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceDataset stores a table under name, replacing any previous copy.
func (s *Store) ReplaceDataset(ctx context.Context, name, sourceURL string, t *query.Table, fetchedAt time.Time) (err error) {
	if name == "" {
		return fmt.Errorf("dataset name is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM pitches WHERE dataset_id IN (SELECT id FROM datasets WHERE name = ?)`, name); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM datasets WHERE name = ?`, name); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, source_url, columns, row_count, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		name,
		sourceURL,
		strings.Join(t.Columns(), ","),
		t.Len(),
		fetchedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pitches (dataset_id, seq, pitch_type, player_name, p_throws, arm_angle, hb, ivb,
			release_speed, release_spin_rate, xwoba, release_extension, release_pos_z)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < t.Len(); i++ {
		o := t.Row(i)
		if _, err = stmt.ExecContext(ctx, id, i, o.PitchType, o.PlayerName, o.Throws,
			nullable(o.ArmAngle), nullable(o.HB), nullable(o.IVB),
			nullable(o.ReleaseSpeed), nullable(o.ReleaseSpinRate), nullable(o.XWOBA),
			nullable(o.ReleaseExtension), nullable(o.ReleasePosZ)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadDataset reads a cached dataset back into a table in its original row order.
func (s *Store) LoadDataset(ctx context.Context, name string) (*query.Table, error) {
	var id int64
	var columns string
	err := s.db.QueryRowContext(ctx, `SELECT id, columns FROM datasets WHERE name = ?`, name).Scan(&id, &columns)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pitch_type, player_name, p_throws, arm_angle, hb, ivb,
			release_speed, release_spin_rate, xwoba, release_extension, release_pos_z
		 FROM pitches WHERE dataset_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Observation
	for rows.Next() {
		var o model.Observation
		var nums [8]sql.NullFloat64
		if err := rows.Scan(&o.PitchType, &o.PlayerName, &o.Throws,
			&nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5], &nums[6], &nums[7]); err != nil {
			return nil, err
		}
		o.ArmAngle = fromNullable(nums[0])
		o.HB = fromNullable(nums[1])
		o.IVB = fromNullable(nums[2])
		o.ReleaseSpeed = fromNullable(nums[3])
		o.ReleaseSpinRate = fromNullable(nums[4])
		o.XWOBA = fromNullable(nums[5])
		o.ReleaseExtension = fromNullable(nums[6])
		o.ReleasePosZ = fromNullable(nums[7])
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return query.NewTable(splitColumns(columns), result), nil
}

// ListDatasets returns metadata for every cached dataset ordered by name.
func (s *Store) ListDatasets(ctx context.Context) ([]model.DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source_url, columns, row_count, fetched_at FROM datasets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.DatasetInfo
	for rows.Next() {
		var info model.DatasetInfo
		var columns, fetchedAt string
		if err := rows.Scan(&info.Name, &info.SourceURL, &columns, &info.Rows, &fetchedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, err
		}
		info.FetchedAt = parsed
		info.Columns = splitColumns(columns)
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func splitColumns(columns string) []string {
	if columns == "" {
		return nil
	}
	return strings.Split(columns, ",")
}
