package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Tiliavir/tick/internal/model"
)

// SQLiteStore keeps everything in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// A single connection serialises writers and keeps :memory: databases
	// alive for the lifetime of the store.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to sqlite database %s: %w", path, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS punches (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			employee_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			location TEXT,
			notes TEXT,
			source TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_punches_date ON punches(date)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS acknowledgements (
			key TEXT PRIMARY KEY,
			acknowledged_at TEXT NOT NULL,
			acknowledged_by TEXT NOT NULL DEFAULT '',
			note TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating sqlite schema: %w", err)
		}
	}
	return nil
}

// AppendPunch implements Store.
func (s *SQLiteStore) AppendPunch(ctx context.Context, p model.Punch) (model.Punch, error) {
	p, err := preparePunch(p)
	if err != nil {
		return p, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO punches (id, employee_id, kind, date, time, location, notes, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.EmployeeID, string(p.Kind), p.Date, p.Time, p.Location, p.Notes, p.Source,
	)
	var serr *sqlite.Error
	if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return p, fmt.Errorf("%w: duplicate id %q", ErrInvalidPunch, p.ID)
	}
	if err != nil {
		return p, fmt.Errorf("storing punch %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLiteStore) queryPunches(ctx context.Context, where string, args ...any) ([]model.Punch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, kind, date, time, location, notes, source
		 FROM punches WHERE `+where+` ORDER BY date, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying punches: %w", err)
	}
	defer rows.Close()

	punches := []model.Punch{}
	for rows.Next() {
		var p model.Punch
		var kind string
		var location, notes sql.NullString
		if err := rows.Scan(&p.ID, &p.EmployeeID, &kind, &p.Date, &p.Time, &location, &notes, &p.Source); err != nil {
			return nil, fmt.Errorf("scanning punch: %w", err)
		}
		p.Kind = model.PunchKind(kind)
		if location.Valid {
			p.Location = &location.String
		}
		if notes.Valid {
			p.Notes = &notes.String
		}
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// LoadDay implements Store.
func (s *SQLiteStore) LoadDay(ctx context.Context, date time.Time) ([]model.Punch, error) {
	return s.queryPunches(ctx, "date = ?", date.Format(model.DateLayout))
}

// LoadRange implements Store. Dates are stored as YYYY-MM-DD, so string
// comparison orders them correctly.
func (s *SQLiteStore) LoadRange(ctx context.Context, from, to time.Time) ([]model.Punch, error) {
	return s.queryPunches(ctx, "date >= ? AND date <= ?", from.Format(model.DateLayout), to.Format(model.DateLayout))
}

// LoadRoster implements Store.
func (s *SQLiteStore) LoadRoster(ctx context.Context) ([]model.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, department, email, source FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	employees := []model.Employee{}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Department, &e.Email, &e.Source); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// SaveRoster implements Store. The roster is replaced as a whole.
func (s *SQLiteStore) SaveRoster(ctx context.Context, employees []model.Employee) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting roster transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM employees`); err != nil {
		return fmt.Errorf("clearing employees: %w", err)
	}
	for _, e := range employees {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO employees (id, name, department, email, source) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.Department, e.Email, e.Source)
		if err != nil {
			return fmt.Errorf("storing employee %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// Acknowledge implements Store.
func (s *SQLiteStore) Acknowledge(ctx context.Context, ack model.Acknowledgement) error {
	if ack.Key == "" {
		return fmt.Errorf("acknowledgement key is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO acknowledgements (key, acknowledged_at, acknowledged_by, note) VALUES (?, ?, ?, ?)`,
		ack.Key, ack.AcknowledgedAt.Format(time.RFC3339Nano), ack.By, ack.Note)
	if err != nil {
		return fmt.Errorf("storing acknowledgement %s: %w", ack.Key, err)
	}
	return nil
}

// Acknowledgements implements Store.
func (s *SQLiteStore) Acknowledgements(ctx context.Context) (map[string]model.Acknowledgement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, acknowledged_at, acknowledged_by, note FROM acknowledgements`)
	if err != nil {
		return nil, fmt.Errorf("querying acknowledgements: %w", err)
	}
	defer rows.Close()

	acks := map[string]model.Acknowledgement{}
	for rows.Next() {
		var a model.Acknowledgement
		var at string
		if err := rows.Scan(&a.Key, &at, &a.By, &a.Note); err != nil {
			return nil, fmt.Errorf("scanning acknowledgement: %w", err)
		}
		a.AcknowledgedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("acknowledgement %s has invalid timestamp %q: %w", a.Key, at, err)
		}
		acks[a.Key] = a
	}
	return acks, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
