package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/castleplan/experiment"
)

const schema = `
CREATE TABLE IF NOT EXISTS experiment (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	driver     TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS exp_param (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id INTEGER NOT NULL REFERENCES experiment(id),
	name          TEXT NOT NULL,
	value         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exp_snapshot (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	experiment_id INTEGER NOT NULL REFERENCES experiment(id),
	taken_at      TIMESTAMP NOT NULL,
	field         TEXT NOT NULL,
	houses        INTEGER NOT NULL,
	ways          INTEGER NOT NULL,
	tiles         INTEGER NOT NULL,
	rating        INTEGER NOT NULL,
	mem_usage     INTEGER NOT NULL,
	boards        INTEGER NOT NULL
);`

// SQLiteRecorder stores a run as one experiment row with its parameters and
// snapshots. Failed writes are retried a few times and then logged; they
// never stop the run.
type SQLiteRecorder struct {
	mu     sync.Mutex
	db     *sql.DB
	id     int64
	driver string

	attempts uint
	delay    time.Duration
}

// OpenSQLite opens (or creates) the database at path and starts a new
// experiment for driver.
func OpenSQLite(ctx context.Context, path, driver string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// one connection, so writes from the reporter and the caller serialize
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	res, err := db.ExecContext(ctx, `INSERT INTO experiment (driver, started_at) VALUES (?, ?)`,
		driver, time.Now().UTC())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating experiment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRecorder{db: db, id: id, driver: driver, attempts: 3, delay: 100 * time.Millisecond}, nil
}

// ExperimentID is the id of the experiment row of this run.
func (r *SQLiteRecorder) ExperimentID() int64 { return r.id }

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func (r *SQLiteRecorder) LogParameter(name string, value any) {
	r.exec("exp_param", `INSERT INTO exp_param (experiment_id, name, value) VALUES (?, ?, ?)`,
		r.id, name, fmt.Sprint(value))
}

func (r *SQLiteRecorder) LogSnapshot(s experiment.Snapshot) {
	r.exec("exp_snapshot", `INSERT INTO exp_snapshot
		(experiment_id, taken_at, field, houses, ways, tiles, rating, mem_usage, boards)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id, s.Time.UTC(), s.Field, s.Houses, s.Ways, s.Tiles, s.Rating, int64(s.MemUsage), int64(s.Boards))
}

func (r *SQLiteRecorder) exec(table, query string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := retry.Do(
		func() error {
			_, err := r.db.Exec(query, args...)
			return err
		},
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Err(err).Uint("n", n).Str("table", table).Msg("sqlite-write-failed-try-again")
		}),
	)
	if err != nil {
		log.Err(err).Str("table", table).Int64("experiment", r.id).Msg("sqlite-write-dropped")
	}
}

// Snapshots loads the snapshots of experiment id, oldest first.
func (r *SQLiteRecorder) Snapshots(ctx context.Context, id int64) ([]experiment.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT s.taken_at, s.field, s.houses, s.ways, s.tiles,
		s.rating, s.mem_usage, s.boards, e.driver
		FROM exp_snapshot s JOIN experiment e ON e.id = s.experiment_id
		WHERE s.experiment_id = ? ORDER BY s.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var snaps []experiment.Snapshot
	for rows.Next() {
		var s experiment.Snapshot
		var mem, boards int64
		if err := rows.Scan(&s.Time, &s.Field, &s.Houses, &s.Ways, &s.Tiles, &s.Rating,
			&mem, &boards, &s.Driver); err != nil {
			return nil, err
		}
		s.MemUsage, s.Boards = uint64(mem), uint64(boards)
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// Parameters loads the parameters of experiment id as strings.
func (r *SQLiteRecorder) Parameters(ctx context.Context, id int64) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value FROM exp_param WHERE experiment_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	params := map[string]string{}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		params[name] = value
	}
	return params, rows.Err()
}
