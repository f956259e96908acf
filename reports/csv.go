package reports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"timesheet/models"
)

// Column sets are fixed per export endpoint, header included.
var (
	AdminExportHeader = []string{
		"Timesheet ID", "User", "Week Start", "Status", "Submitted At", "Approved At",
		"Entry Date", "Clock In", "Clock Out", "Project", "Description", "Hours",
	}
	EmployeeExportHeader = []string{
		"Timesheet ID", "User", "Week Start", "Status", "Submitted At", "Approved At",
		"Entry Date", "Clock In", "Clock Out", "Project", "Description", "Hours",
		"Manager Comment",
	}
	ManagerHistoryHeader = []string{
		"Timesheet ID", "Employee", "Week Start", "Status", "Submitted At", "Approved At",
		"Total Hours", "Manager Comment",
	}
)

// AdminExportRows flattens timesheets to one row per entry for the
// global admin export. Timesheets and their entries must be preloaded
// with their owning user.
func AdminExportRows(sheets []models.Timesheet) [][]string {
	var rows [][]string
	for _, ts := range sheets {
		for _, e := range ts.Entries {
			rows = append(rows, []string{
				fmt.Sprintf("%d", ts.ID),
				ts.User.Username,
				formatDate(ts.WeekStart),
				string(ts.Status),
				formatTimestamp(ts.SubmittedAt),
				formatTimestamp(ts.ApprovedAt),
				formatDate(e.Date),
				formatClock(e.ClockIn),
				formatClock(e.ClockOut),
				e.Project,
				e.Description,
				fmt.Sprintf("%.2f", e.Hours),
			})
		}
	}
	return rows
}

// EmployeeExportRows is the personal per-entry export: the admin column
// set plus the manager comment.
func EmployeeExportRows(sheets []models.Timesheet) [][]string {
	var rows [][]string
	for _, ts := range sheets {
		for _, e := range ts.Entries {
			rows = append(rows, []string{
				fmt.Sprintf("%d", ts.ID),
				ts.User.Username,
				formatDate(ts.WeekStart),
				string(ts.Status),
				formatTimestamp(ts.SubmittedAt),
				formatTimestamp(ts.ApprovedAt),
				formatDate(e.Date),
				formatClock(e.ClockIn),
				formatClock(e.ClockOut),
				e.Project,
				e.Description,
				fmt.Sprintf("%.2f", e.Hours),
				ts.ManagerComment,
			})
		}
	}
	return rows
}

// ManagerHistoryRows is one row per timesheet with the entry hours
// summed, for the manager's review-history export.
func ManagerHistoryRows(sheets []models.Timesheet) [][]string {
	var rows [][]string
	for _, ts := range sheets {
		rows = append(rows, []string{
			fmt.Sprintf("%d", ts.ID),
			ts.User.Username,
			formatDate(ts.WeekStart),
			string(ts.Status),
			formatTimestamp(ts.SubmittedAt),
			formatTimestamp(ts.ApprovedAt),
			fmt.Sprintf("%.2f", ts.TotalHours()),
			ts.ManagerComment,
		})
	}
	return rows
}

// WriteCSV streams a header and rows as a CSV attachment.
func WriteCSV(w http.ResponseWriter, filename string, header []string, rows [][]string) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatTimestamp renders nullable timestamps; absent values render as
// empty string, never a null marker.
func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func formatClock(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
