package timesheets

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"timesheet/models"
)

// WeekForm is the parsed result of a weekly edit form: the full
// replacement entry set plus its total hours. Field names per day index
// i in 0..6: clock_in_i, clock_out_i, project_i[], description_i[],
// hours_i[].
type WeekForm struct {
	Entries    []models.TimesheetEntry
	TotalHours float64
}

// ParseWeekForm flattens a weekly submission into entries. Rows whose
// project or hours value is blank after trimming are skipped. Hours that
// fail to parse count as zero. A per-day clock in/out applies to every
// kept row of that day; clock values that are not HH:MM are dropped.
func ParseWeekForm(form url.Values, weekStart time.Time) WeekForm {
	var parsed WeekForm

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		clockIn := parseClock(form.Get(fmt.Sprintf("clock_in_%d", i)))
		clockOut := parseClock(form.Get(fmt.Sprintf("clock_out_%d", i)))

		projects := form[fmt.Sprintf("project_%d[]", i)]
		descriptions := form[fmt.Sprintf("description_%d[]", i)]
		hoursList := form[fmt.Sprintf("hours_%d[]", i)]

		for j := range projects {
			if j >= len(hoursList) {
				break
			}
			project := strings.TrimSpace(projects[j])
			hoursStr := strings.TrimSpace(hoursList[j])
			if project == "" || hoursStr == "" {
				continue
			}

			hours, err := strconv.ParseFloat(hoursStr, 64)
			if err != nil || hours < 0 {
				hours = 0
			}

			description := ""
			if j < len(descriptions) {
				description = strings.TrimSpace(descriptions[j])
			}

			parsed.Entries = append(parsed.Entries, models.TimesheetEntry{
				Date:        date,
				ClockIn:     clockIn,
				ClockOut:    clockOut,
				Project:     project,
				Description: description,
				Hours:       hours,
			})
			parsed.TotalHours += hours
		}
	}

	return parsed
}

// parseClock validates an HH:MM form value, returning nil for blank or
// malformed input.
func parseClock(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return nil
	}
	normalized := t.Format("15:04")
	return &normalized
}
