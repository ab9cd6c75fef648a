package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// ErrInvalidPunch is returned when a punch is rejected before it is written.
var ErrInvalidPunch = errors.New("invalid punch")

// Store persists punches, the employee roster and finding acknowledgements.
// Punches are append-only.
type Store interface {
	// AppendPunch validates and records p, assigning an id when it has none.
	AppendPunch(ctx context.Context, p model.Punch) (model.Punch, error)
	// LoadDay returns the punches recorded for the calendar day of date, in
	// the order they were written.
	LoadDay(ctx context.Context, date time.Time) ([]model.Punch, error)
	// LoadRange returns all punches in [from, to] inclusive, day by day.
	LoadRange(ctx context.Context, from, to time.Time) ([]model.Punch, error)

	LoadRoster(ctx context.Context) ([]model.Employee, error)
	SaveRoster(ctx context.Context, employees []model.Employee) error

	Acknowledge(ctx context.Context, ack model.Acknowledgement) error
	Acknowledgements(ctx context.Context) (map[string]model.Acknowledgement, error)

	Close() error
}

// Open returns the store selected by driver ("file" or "sqlite"). home is the
// data directory; dbPath is the SQLite database file.
func Open(driver, home, dbPath string) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(home), nil
	case "sqlite":
		if dbPath == "" {
			dbPath = filepath.Join(home, "tick.db")
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
		return NewSQLiteStore(dbPath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// preparePunch validates p and fills in its id and source.
func preparePunch(p model.Punch) (model.Punch, error) {
	p.EmployeeID = strings.TrimSpace(p.EmployeeID)
	if p.EmployeeID == "" {
		return p, fmt.Errorf("%w: employee id is required", ErrInvalidPunch)
	}
	if !p.Kind.Valid() {
		return p, fmt.Errorf("%w: unknown kind %q", ErrInvalidPunch, p.Kind)
	}
	if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
		return p, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidPunch, p.Date)
	}
	if _, err := timecalc.ParseClock(p.Time); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPunch, err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Source == "" {
		p.Source = "manual"
	}
	return p, nil
}
