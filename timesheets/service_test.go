package timesheets

import (
	"testing"
	"time"

	"timesheet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntriesByDay(t *testing.T) {
	ts := &models.Timesheet{
		WeekStart: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Entries: []models.TimesheetEntry{
			{Project: "A", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
			{Project: "B", Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)},
			{Project: "C", Date: time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)},
		},
	}

	days := EntriesByDay(ts)

	require.Len(t, days, 7)
	assert.Equal(t, ts.WeekStart, days[0].Date)

	// multiple projects on the same day stay on that day, in order
	require.Len(t, days[0].Entries, 2)
	assert.Equal(t, "A", days[0].Entries[0].Project)
	assert.Equal(t, "B", days[0].Entries[1].Project)

	// Sunday lands on the last slot
	require.Len(t, days[6].Entries, 1)
	assert.Equal(t, "C", days[6].Entries[0].Project)

	for i := 1; i < 6; i++ {
		assert.Empty(t, days[i].Entries)
	}
}

func TestEntriesByDayHandlesTimezoneNoise(t *testing.T) {
	// dates read back from the store may carry a time-of-day component
	ts := &models.Timesheet{
		WeekStart: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Entries: []models.TimesheetEntry{
			{Project: "A", Date: time.Date(2024, 6, 4, 23, 0, 0, 0, time.UTC)},
		},
	}

	days := EntriesByDay(ts)
	require.Len(t, days[1].Entries, 1)
	assert.Equal(t, "A", days[1].Entries[0].Project)
}
