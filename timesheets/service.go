package timesheets

import (
	"errors"
	"time"

	"timesheet/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Action discriminates the two employee edit submissions.
type Action string

const (
	ActionSave   Action = "save"
	ActionSubmit Action = "submit"
)

// GetOrCreate returns the user's timesheet for the week containing date,
// creating a draft when none exists. The date is normalized to its
// Monday first; lookup and insert share one transaction so no duplicate
// (user, week) pair can be created by this path. The second return value
// is true when a new draft was created.
func GetOrCreate(db *gorm.DB, userID uint, date time.Time) (*models.Timesheet, bool, error) {
	weekStart := models.MondayOf(date)

	var ts models.Timesheet
	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND week_start = ?", userID, weekStart).First(&ts).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		ts = models.Timesheet{
			UserID:    userID,
			WeekStart: weekStart,
			Status:    models.StatusDraft,
		}
		created = true
		return tx.Create(&ts).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &ts, created, nil
}

// SaveWeek replaces the timesheet's entries with the parsed set and, for
// a submit, advances the status. Delete, insert and status update commit
// together; a submit that fails its guards aborts before anything is
// deleted, leaving storage exactly as it was.
func SaveWeek(db *gorm.DB, ts *models.Timesheet, form WeekForm, action Action, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if action == ActionSubmit {
			if err := ts.CanSubmit(form.TotalHours, now); err != nil {
				return err
			}
		}

		if err := replaceEntries(tx, ts, form.Entries); err != nil {
			return err
		}

		if action == ActionSubmit {
			ts.Submit(now)
		}
		return saveSheet(tx, ts)
	})
}

// Approve records a manager approval. A timesheet not in submitted state
// surfaces models.ErrNotSubmitted and nothing is written.
func Approve(db *gorm.DB, ts *models.Timesheet, comment string, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ts.Approve(comment, now); err != nil {
			return err
		}
		return saveSheet(tx, ts)
	})
}

// Reject records a manager rejection, returning the sheet to the owner
// for edits and resubmission.
func Reject(db *gorm.DB, ts *models.Timesheet, comment string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := ts.Reject(comment); err != nil {
			return err
		}
		return saveSheet(tx, ts)
	})
}

// Override is the admin edit: full entry replacement plus a forced
// status, with timestamps set or cleared per the target status.
func Override(db *gorm.DB, ts *models.Timesheet, form WeekForm, status models.Status, now time.Time) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := replaceEntries(tx, ts, form.Entries); err != nil {
			return err
		}
		ts.ApplyStatus(status, now)
		return saveSheet(tx, ts)
	})
}

// saveSheet persists the timesheet row itself, never its associations.
// Sheets arrive here with Entries preloaded; letting gorm upsert that
// slice would re-insert rows replaceEntries just deleted.
func saveSheet(tx *gorm.DB, ts *models.Timesheet) error {
	return tx.Omit(clause.Associations).Save(ts).Error
}

// Delete removes a draft timesheet and its entries.
func Delete(db *gorm.DB, ts *models.Timesheet) error {
	if !ts.Deletable() {
		return models.ErrNotDraft
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("timesheet_id = ?", ts.ID).Delete(&models.TimesheetEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(ts).Error
	})
}

// DeleteForUser removes every timesheet owned by userID, entries
// included. Used when an admin deletes the user itself.
func DeleteForUser(tx *gorm.DB, userID uint) error {
	var ids []uint
	if err := tx.Model(&models.Timesheet{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("timesheet_id IN ?", ids).Delete(&models.TimesheetEntry{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Timesheet{}).Error
}

// replaceEntries implements replace-on-edit: existing entries go away
// and the new set is inserted keyed to the timesheet.
func replaceEntries(tx *gorm.DB, ts *models.Timesheet, entries []models.TimesheetEntry) error {
	if err := tx.Where("timesheet_id = ?", ts.ID).Delete(&models.TimesheetEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].ID = 0
		entries[i].TimesheetID = ts.ID
	}
	return tx.Create(&entries).Error
}

// EntriesByDay groups a loaded entry set onto the seven-day grid the
// edit and view pages render.
type DayEntries struct {
	Date    time.Time
	Entries []models.TimesheetEntry
}

func EntriesByDay(ts *models.Timesheet) []DayEntries {
	days := make([]DayEntries, 7)
	for i, date := range ts.WeekDates() {
		days[i].Date = date
	}
	for _, e := range ts.Entries {
		for i := range days {
			if sameDay(e.Date, days[i].Date) {
				days[i].Entries = append(days[i].Entries, e)
				break
			}
		}
	}
	return days
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
