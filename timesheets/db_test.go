package timesheets

import (
	"fmt"
	"net/url"
	"sort"
	"testing"
	"time"

	"timesheet/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbNow = time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Timesheet{}, &models.TimesheetEntry{}))

	user := models.User{Username: "employee", Email: "employee@example.com", PasswordHash: "x", Role: models.RoleEmployee}
	require.NoError(t, db.Create(&user).Error)

	return db
}

func seedSheet(t *testing.T, db *gorm.DB, status models.Status, projects ...string) *models.Timesheet {
	t.Helper()

	ts := models.Timesheet{
		UserID:    1,
		WeekStart: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	require.NoError(t, db.Create(&ts).Error)

	for _, p := range projects {
		entry := models.TimesheetEntry{
			TimesheetID: ts.ID,
			Date:        ts.WeekStart,
			Project:     p,
			Hours:       2,
		}
		require.NoError(t, db.Create(&entry).Error)
	}

	return reloadSheet(t, db, ts.ID)
}

// reloadSheet fetches the sheet the way the handlers do, entries
// preloaded.
func reloadSheet(t *testing.T, db *gorm.DB, id uint) *models.Timesheet {
	t.Helper()

	var ts models.Timesheet
	require.NoError(t, db.Preload("Entries").First(&ts, id).Error)
	return &ts
}

func persistedProjects(t *testing.T, db *gorm.DB, timesheetID uint) []string {
	t.Helper()

	var projects []string
	require.NoError(t, db.Model(&models.TimesheetEntry{}).
		Where("timesheet_id = ?", timesheetID).
		Pluck("project", &projects).Error)
	sort.Strings(projects)
	return projects
}

func weekForm(rows ...[2]string) url.Values {
	form := url.Values{}
	for _, row := range rows {
		form.Add("project_0[]", row[0])
		form.Add("hours_0[]", row[1])
	}
	return form
}

func TestSaveWeekReplacesEntries(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusDraft, "A", "B", "C")

	form := ParseWeekForm(weekForm([2]string{"D", "3"}, [2]string{"E", "5"}), ts.WeekStart)
	require.NoError(t, SaveWeek(db, ts, form, ActionSave, dbNow))

	// exactly the new set survives, nothing of the old one
	assert.Equal(t, []string{"D", "E"}, persistedProjects(t, db, ts.ID))

	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.SubmittedAt)
}

func TestSaveWeekSubmit(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusDraft)

	form := ParseWeekForm(weekForm([2]string{"X", "8"}), ts.WeekStart)
	require.NoError(t, SaveWeek(db, ts, form, ActionSubmit, dbNow))

	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusSubmitted, reloaded.Status)
	require.NotNil(t, reloaded.SubmittedAt)
	assert.Nil(t, reloaded.ApprovedAt)
	assert.Equal(t, []string{"X"}, persistedProjects(t, db, ts.ID))
}

func TestSaveWeekZeroHoursSubmitLeavesStorageUntouched(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusDraft, "A", "B")

	form := ParseWeekForm(weekForm([2]string{"D", "0"}), ts.WeekStart)
	err := SaveWeek(db, ts, form, ActionSubmit, dbNow)
	assert.ErrorIs(t, err, models.ErrNoHours)

	// the aborted transaction leaves the old entry set and status alone
	assert.Equal(t, []string{"A", "B"}, persistedProjects(t, db, ts.ID))
	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.SubmittedAt)
}

func TestSaveWeekFutureWeekSubmitLeavesStorageUntouched(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusDraft, "A")
	ts.WeekStart = models.MondayOf(dbNow).AddDate(0, 0, 7)
	require.NoError(t, db.Model(&models.Timesheet{}).Where("id = ?", ts.ID).Update("week_start", ts.WeekStart).Error)

	form := ParseWeekForm(weekForm([2]string{"D", "4"}), ts.WeekStart)
	err := SaveWeek(db, ts, form, ActionSubmit, dbNow)
	assert.ErrorIs(t, err, models.ErrFutureWeek)

	assert.Equal(t, []string{"A"}, persistedProjects(t, db, ts.ID))
	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
}

func TestGetOrCreateNormalizesAndDeduplicates(t *testing.T) {
	db := newTestDB(t)

	wednesday := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	ts, created, err := GetOrCreate(db, 1, wednesday)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, ts.WeekStart.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.StatusDraft, ts.Status)

	// any other date in the same week resolves to the existing sheet
	friday := time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC)
	again, created, err := GetOrCreate(db, 1, friday)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, ts.ID, again.ID)

	var count int64
	db.Model(&models.Timesheet{}).Where("user_id = ?", 1).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteDraftOnly(t *testing.T) {
	db := newTestDB(t)

	draft := seedSheet(t, db, models.StatusDraft, "A")
	require.NoError(t, Delete(db, draft))
	assert.Empty(t, persistedProjects(t, db, draft.ID))
	var count int64
	db.Model(&models.Timesheet{}).Where("id = ?", draft.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	submitted := seedSheet(t, db, models.StatusSubmitted, "B")
	assert.ErrorIs(t, Delete(db, submitted), models.ErrNotDraft)
	assert.Equal(t, []string{"B"}, persistedProjects(t, db, submitted.ID))
}

func TestApprovePersists(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusSubmitted, "A")

	require.NoError(t, Approve(db, ts, "ok", dbNow))

	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ApprovedAt)
	assert.Equal(t, "ok", reloaded.ManagerComment)
	assert.Equal(t, []string{"A"}, persistedProjects(t, db, ts.ID))
}

func TestApproveNonSubmittedChangesNothing(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusDraft, "A")

	assert.ErrorIs(t, Approve(db, ts, "nope", dbNow), models.ErrNotSubmitted)

	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.ApprovedAt)
	assert.Empty(t, reloaded.ManagerComment)
}

func TestRejectPersists(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusSubmitted, "A")

	require.NoError(t, Reject(db, ts, "missing codes"))

	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusRejected, reloaded.Status)
	assert.Nil(t, reloaded.ApprovedAt)
	assert.Equal(t, "missing codes", reloaded.ManagerComment)
}

func TestOverrideReplacesEntriesAndForcesStatus(t *testing.T) {
	db := newTestDB(t)
	ts := seedSheet(t, db, models.StatusSubmitted, "A", "B")

	form := ParseWeekForm(weekForm([2]string{"D", "6"}), ts.WeekStart)
	require.NoError(t, Override(db, ts, form, models.StatusApproved, dbNow))

	assert.Equal(t, []string{"D"}, persistedProjects(t, db, ts.ID))
	reloaded := reloadSheet(t, db, ts.ID)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
	require.NotNil(t, reloaded.ApprovedAt)

	// forcing it back to draft clears both timestamps
	reloaded = reloadSheet(t, db, ts.ID)
	require.NoError(t, Override(db, reloaded, form, models.StatusDraft, dbNow))
	reloaded = reloadSheet(t, db, reloaded.ID)
	assert.Equal(t, models.StatusDraft, reloaded.Status)
	assert.Nil(t, reloaded.SubmittedAt)
	assert.Nil(t, reloaded.ApprovedAt)
}

func TestDeleteForUser(t *testing.T) {
	db := newTestDB(t)
	first := seedSheet(t, db, models.StatusDraft, "A")
	second := models.Timesheet{UserID: 1, WeekStart: first.WeekStart.AddDate(0, 0, 7), Status: models.StatusApproved}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&models.TimesheetEntry{TimesheetID: second.ID, Date: second.WeekStart, Project: "B", Hours: 1}).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeleteForUser(tx, 1)
	}))

	var sheets, entries int64
	db.Model(&models.Timesheet{}).Where("user_id = ?", 1).Count(&sheets)
	db.Model(&models.TimesheetEntry{}).Count(&entries)
	assert.Equal(t, int64(0), sheets)
	assert.Equal(t, int64(0), entries)
}
