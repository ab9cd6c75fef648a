package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// FileStore keeps one human-readable JSON file per day under its base
// directory (<base>/YYYY/MM/DD.json), plus roster.json and acks.json.
type FileStore struct {
	base string
	mu   sync.Mutex
}

// NewFileStore returns a store rooted at base.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// readJSON decodes path into v. A missing file leaves v untouched and
// reports found=false. A corrupt file is backed up to <path>.corrupt.
func readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return false, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return true, nil
}

// writeJSON atomically writes v to path.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// LoadDayFile loads the DayFile for the given date. Returns an empty DayFile if not found.
func (s *FileStore) LoadDayFile(t time.Time) (model.DayFile, error) {
	df := model.DayFile{Date: t.Format(model.DateLayout), Punches: []model.Punch{}}
	if _, err := readJSON(dayFilePath(s.base, t), &df); err != nil {
		return model.DayFile{}, err
	}
	if df.Punches == nil {
		df.Punches = []model.Punch{}
	}
	return df, nil
}

// AppendPunch implements Store.
func (s *FileStore) AppendPunch(ctx context.Context, p model.Punch) (model.Punch, error) {
	p, err := preparePunch(p)
	if err != nil {
		return p, err
	}
	if err := ctx.Err(); err != nil {
		return p, err
	}
	day, err := time.Parse(model.DateLayout, p.Date)
	if err != nil {
		return p, fmt.Errorf("%w: date %q", ErrInvalidPunch, p.Date)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	df, err := s.LoadDayFile(day)
	if err != nil {
		return p, err
	}
	for _, existing := range df.Punches {
		if existing.ID == p.ID {
			return p, fmt.Errorf("%w: duplicate id %q", ErrInvalidPunch, p.ID)
		}
	}
	df.Punches = append(df.Punches, p)
	return p, writeJSON(dayFilePath(s.base, day), df)
}

// LoadDay implements Store.
func (s *FileStore) LoadDay(ctx context.Context, date time.Time) ([]model.Punch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	df, err := s.LoadDayFile(date)
	if err != nil {
		return nil, err
	}
	return df.Punches, nil
}

// LoadRange implements Store.
func (s *FileStore) LoadRange(ctx context.Context, from, to time.Time) ([]model.Punch, error) {
	punches := []model.Punch{}
	for _, label := range timecalc.Days(from, to) {
		d, err := time.Parse(model.DateLayout, label)
		if err != nil {
			return nil, err
		}
		day, err := s.LoadDay(ctx, d)
		if err != nil {
			return nil, err
		}
		punches = append(punches, day...)
	}
	return punches, nil
}

// LoadRoster implements Store.
func (s *FileStore) LoadRoster(ctx context.Context) ([]model.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	employees := []model.Employee{}
	if _, err := readJSON(filepath.Join(s.base, "roster.json"), &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// SaveRoster implements Store.
func (s *FileStore) SaveRoster(ctx context.Context, employees []model.Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if employees == nil {
		employees = []model.Employee{}
	}
	return writeJSON(filepath.Join(s.base, "roster.json"), employees)
}

// Acknowledge implements Store. Acknowledging the same key again replaces
// the earlier record.
func (s *FileStore) Acknowledge(ctx context.Context, ack model.Acknowledgement) error {
	if ack.Key == "" {
		return fmt.Errorf("acknowledgement key is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.base, "acks.json")
	acks := map[string]model.Acknowledgement{}
	if _, err := readJSON(path, &acks); err != nil {
		return err
	}
	acks[ack.Key] = ack
	return writeJSON(path, acks)
}

// Acknowledgements implements Store.
func (s *FileStore) Acknowledgements(ctx context.Context) (map[string]model.Acknowledgement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acks := map[string]model.Acknowledgement{}
	if _, err := readJSON(filepath.Join(s.base, "acks.json"), &acks); err != nil {
		return nil, err
	}
	return acks, nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
