package timesheets

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekStart = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) // a Monday

func TestParseWeekFormSingleEntry(t *testing.T) {
	form := url.Values{
		"project_0[]":     {"X"},
		"description_0[]": {"feature work"},
		"hours_0[]":       {"8"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 1)
	e := parsed.Entries[0]
	assert.Equal(t, weekStart, e.Date)
	assert.Equal(t, "X", e.Project)
	assert.Equal(t, "feature work", e.Description)
	assert.Equal(t, 8.0, e.Hours)
	assert.Nil(t, e.ClockIn)
	assert.Nil(t, e.ClockOut)
	assert.Equal(t, 8.0, parsed.TotalHours)
}

func TestParseWeekFormSkipsBlankRows(t *testing.T) {
	form := url.Values{
		// blank project with hours entered: dropped
		"project_0[]": {"", "Y"},
		"hours_0[]":   {"3", "2"},
		// blank hours with project entered: dropped
		"project_1[]": {"Z"},
		"hours_1[]":   {"   "},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "Y", parsed.Entries[0].Project)
	assert.Equal(t, 2.0, parsed.TotalHours)
}

func TestParseWeekFormUnparseableHoursCountAsZero(t *testing.T) {
	form := url.Values{
		"project_2[]": {"Alpha", "Beta"},
		"hours_2[]":   {"abc", "4"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, 0.0, parsed.Entries[0].Hours)
	assert.Equal(t, 4.0, parsed.Entries[1].Hours)
	assert.Equal(t, 4.0, parsed.TotalHours)
}

func TestParseWeekFormNegativeHoursClampToZero(t *testing.T) {
	form := url.Values{
		"project_0[]": {"Alpha"},
		"hours_0[]":   {"-3"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, 0.0, parsed.Entries[0].Hours)
}

func TestParseWeekFormSharedClockTimes(t *testing.T) {
	form := url.Values{
		"clock_in_3":      {"09:00"},
		"clock_out_3":     {"17:30"},
		"project_3[]":     {"Alpha", "Beta"},
		"description_3[]": {"", ""},
		"hours_3[]":       {"4", "4"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 2)
	for _, e := range parsed.Entries {
		assert.Equal(t, weekStart.AddDate(0, 0, 3), e.Date)
		require.NotNil(t, e.ClockIn)
		require.NotNil(t, e.ClockOut)
		assert.Equal(t, "09:00", *e.ClockIn)
		assert.Equal(t, "17:30", *e.ClockOut)
	}
}

func TestParseWeekFormMalformedClockDropped(t *testing.T) {
	form := url.Values{
		"clock_in_0":  {"9am"},
		"clock_out_0": {"25:99"},
		"project_0[]": {"Alpha"},
		"hours_0[]":   {"8"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 1)
	assert.Nil(t, parsed.Entries[0].ClockIn)
	assert.Nil(t, parsed.Entries[0].ClockOut)
}

func TestParseWeekFormTrimsFields(t *testing.T) {
	form := url.Values{
		"project_0[]":     {"  Alpha  "},
		"description_0[]": {"  notes  "},
		"hours_0[]":       {" 2.5 "},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "Alpha", parsed.Entries[0].Project)
	assert.Equal(t, "notes", parsed.Entries[0].Description)
	assert.Equal(t, 2.5, parsed.Entries[0].Hours)
}

func TestParseWeekFormFullWeek(t *testing.T) {
	form := url.Values{}
	for _, i := range []string{"0", "1", "2", "3", "4", "5", "6"} {
		form.Add("project_"+i+"[]", "P")
		form.Add("hours_"+i+"[]", "1")
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 7)
	assert.Equal(t, 7.0, parsed.TotalHours)
	assert.Equal(t, weekStart.AddDate(0, 0, 6), parsed.Entries[6].Date)
}

func TestParseWeekFormMissingDescriptions(t *testing.T) {
	// fewer descriptions than projects must not panic
	form := url.Values{
		"project_0[]": {"A", "B"},
		"hours_0[]":   {"1", "2"},
	}

	parsed := ParseWeekForm(form, weekStart)

	require.Len(t, parsed.Entries, 2)
	assert.Empty(t, parsed.Entries[1].Description)
}
