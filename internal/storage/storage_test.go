package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/storage"
)

var day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s storage.Store)) {
	t.Run("file", func(t *testing.T) {
		s, err := storage.Open("file", t.TempDir(), "")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		s, err := storage.Open("sqlite", dir, filepath.Join(dir, "db", "tick.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestLoadDayEmpty(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		punches, err := s.LoadDay(context.Background(), day)
		require.NoError(t, err)
		assert.NotNil(t, punches)
		assert.Empty(t, punches)
	})
}

func TestAppendAndLoadDay(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		loc := "Front desk"

		in, err := s.AppendPunch(ctx, model.Punch{
			EmployeeID: " E1 ",
			Kind:       model.ClockIn,
			Date:       "2024-01-15",
			Time:       "08:50",
			Location:   &loc,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, in.ID)
		assert.Equal(t, "E1", in.EmployeeID)
		assert.Equal(t, "manual", in.Source)

		_, err = s.AppendPunch(ctx, model.Punch{
			ID: "out-1", EmployeeID: "E1", Kind: model.ClockOut,
			Date: "2024-01-15", Time: "17:30", Source: "terminal",
		})
		require.NoError(t, err)

		_, err = s.AppendPunch(ctx, model.Punch{
			EmployeeID: "E1", Kind: model.ClockIn, Date: "2024-01-16", Time: "08:00",
		})
		require.NoError(t, err)

		punches, err := s.LoadDay(ctx, day)
		require.NoError(t, err)
		require.Len(t, punches, 2)
		assert.Equal(t, model.ClockIn, punches[0].Kind)
		require.NotNil(t, punches[0].Location)
		assert.Equal(t, "Front desk", *punches[0].Location)
		assert.Nil(t, punches[0].Notes)
		assert.Equal(t, "out-1", punches[1].ID)
		assert.Equal(t, "terminal", punches[1].Source)

		all, err := s.LoadRange(ctx, day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Equal(t, "2024-01-16", all[2].Date)
	})
}

func TestLoadRangeCoversEveryCalendarDay(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		for _, date := range []string{"2024-01-14", "2024-01-15", "2024-01-16", "2024-01-17"} {
			_, err := s.AppendPunch(ctx, model.Punch{EmployeeID: "E1", Kind: model.ClockIn, Date: date, Time: "08:00"})
			require.NoError(t, err)
		}

		// from carries a later time of day than to.
		got, err := s.LoadRange(ctx, day.Add(18*time.Hour), day.AddDate(0, 0, 1).Add(6*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2024-01-15", got[0].Date)
		assert.Equal(t, "2024-01-16", got[1].Date)
	})
}

func TestAppendRejectsInvalidPunch(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		cases := map[string]model.Punch{
			"no employee": {Kind: model.ClockIn, Date: "2024-01-15", Time: "08:00"},
			"bad kind":    {EmployeeID: "E1", Kind: "nap", Date: "2024-01-15", Time: "08:00"},
			"bad date":    {EmployeeID: "E1", Kind: model.ClockIn, Date: "15.01.2024", Time: "08:00"},
			"bad time":    {EmployeeID: "E1", Kind: model.ClockIn, Date: "2024-01-15", Time: "8 o'clock"},
		}
		for name, p := range cases {
			_, err := s.AppendPunch(ctx, p)
			assert.ErrorIs(t, err, storage.ErrInvalidPunch, name)
		}
		punches, err := s.LoadDay(ctx, day)
		require.NoError(t, err)
		assert.Empty(t, punches)
	})
}

func TestRosterRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		empty, err := s.LoadRoster(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		roster := []model.Employee{
			{ID: "E1", Name: "Ada", Department: "Ops"},
			{ID: "E2", Name: "Grace", Department: "Eng", Email: "grace@example.com", Source: "import"},
		}
		require.NoError(t, s.SaveRoster(ctx, roster))
		require.NoError(t, s.SaveRoster(ctx, roster[1:]))

		got, err := s.LoadRoster(ctx)
		require.NoError(t, err)
		assert.Equal(t, roster[1:], got)
	})
}

func TestAcknowledgements(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		first := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

		require.NoError(t, s.Acknowledge(ctx, model.Acknowledgement{Key: "k1", AcknowledgedAt: first, By: "admin"}))
		require.NoError(t, s.Acknowledge(ctx, model.Acknowledgement{Key: "k1", AcknowledgedAt: first.Add(time.Hour), Note: "again"}))
		require.NoError(t, s.Acknowledge(ctx, model.Acknowledgement{Key: "k2", AcknowledgedAt: first}))
		assert.Error(t, s.Acknowledge(ctx, model.Acknowledgement{}))

		acks, err := s.Acknowledgements(ctx)
		require.NoError(t, err)
		require.Len(t, acks, 2)
		assert.True(t, acks["k1"].AcknowledgedAt.Equal(first.Add(time.Hour)))
		assert.Equal(t, "again", acks["k1"].Note)
	})
}

func TestFileStoreCorruptDayIsBackedUp(t *testing.T) {
	// Verify that a corrupt JSON file is backed up and returns an error.
	base := t.TempDir()
	s := storage.NewFileStore(base)

	path := filepath.Join(base, "2024", "01", "15.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{bad json"), 0o600))

	_, err := s.LoadDay(context.Background(), day)
	require.Error(t, err)

	_, statErr := os.Stat(path + ".corrupt")
	assert.NoError(t, statErr, "expected backup file to exist after corrupt JSON")
}

func TestFileStoreLayout(t *testing.T) {
	base := t.TempDir()
	s := storage.NewFileStore(base)
	_, err := s.AppendPunch(context.Background(), model.Punch{
		EmployeeID: "E1", Kind: model.ClockIn, Date: "2024-01-15", Time: "08:00",
	})
	require.NoError(t, err)

	df, err := s.LoadDayFile(day)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", df.Date)
	assert.Len(t, df.Punches, 1)

	_, err = os.Stat(filepath.Join(base, "2024", "01", "15.json"))
	assert.NoError(t, err)
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	backends(t, func(t *testing.T, s storage.Store) {
		ctx := context.Background()
		p := model.Punch{ID: "p1", EmployeeID: "E1", Kind: model.ClockIn, Date: "2024-01-15", Time: "08:00"}
		_, err := s.AppendPunch(ctx, p)
		require.NoError(t, err)
		_, err = s.AppendPunch(ctx, p)
		assert.ErrorIs(t, err, storage.ErrInvalidPunch)

		punches, err := s.LoadDay(ctx, day)
		require.NoError(t, err)
		assert.Len(t, punches, 1)
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := storage.Open("postgres", t.TempDir(), "")
	assert.Error(t, err)
}
