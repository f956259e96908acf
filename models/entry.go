package models

import (
	"time"
)

// TimesheetEntry is one project/day/hours line on a timesheet. Entries
// have no lifecycle of their own: every edit of the parent timesheet
// deletes and recreates the full set. Multiple entries may share a date
// (several projects worked the same day); clock in/out are shared per
// day and stored as HH:MM strings, nil when not entered.
type TimesheetEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TimesheetID uint      `gorm:"not null;index" json:"timesheet_id"`
	Date        time.Time `gorm:"not null;type:date" json:"date"`
	ClockIn     *string   `gorm:"size:5" json:"clock_in"`
	ClockOut    *string   `gorm:"size:5" json:"clock_out"`
	Project     string    `gorm:"not null;size:150" json:"project"`
	Description string    `gorm:"type:text" json:"description"`
	Hours       float64   `gorm:"not null" json:"hours"`
}
