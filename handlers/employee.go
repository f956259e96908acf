package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"timesheet/config"
	"timesheet/middleware"
	"timesheet/models"
	"timesheet/notify"
	"timesheet/reports"
	"timesheet/timesheets"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type EmployeeHandler struct {
	config    *config.Config
	db        *gorm.DB
	templates map[string]*template.Template
}

func NewEmployeeHandler(cfg *config.Config, db *gorm.DB, templates map[string]*template.Template) *EmployeeHandler {
	return &EmployeeHandler{
		config:    cfg,
		db:        db,
		templates: templates,
	}
}

// List shows the user's own timesheets, newest week first.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var sheets []models.Timesheet
	h.db.Preload("Entries").
		Where("user_id = ?", user.ID).
		Order("week_start desc").
		Find(&sheets)

	data := map[string]interface{}{
		"User":       user,
		"Timesheets": sheets,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("success"),
		"Info":       r.URL.Query().Get("info"),
	}
	h.templates["employee-timesheets"].ExecuteTemplate(w, "base", data)
}

func (h *EmployeeHandler) NewPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	data := map[string]interface{}{
		"User":             user,
		"DefaultWeekStart": models.MondayOf(time.Now()).Format("2006-01-02"),
		"Error":            r.URL.Query().Get("error"),
	}
	h.templates["timesheet-new"].ExecuteTemplate(w, "base", data)
}

// Create normalizes the picked date to its Monday and creates a draft,
// or redirects to the existing timesheet for that week.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/employee/timesheets/new?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	weekStartStr := r.FormValue("week_start")
	if weekStartStr == "" {
		http.Redirect(w, r, "/employee/timesheets/new?error=Please+select+a+week+start+date", http.StatusSeeOther)
		return
	}

	date, err := time.Parse("2006-01-02", weekStartStr)
	if err != nil {
		http.Redirect(w, r, "/employee/timesheets/new?error=Invalid+date+format", http.StatusSeeOther)
		return
	}

	ts, created, err := timesheets.GetOrCreate(h.db, user.ID, date)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create timesheet")
		http.Redirect(w, r, "/employee/timesheets/new?error=Something+went+wrong,+please+try+again+later", http.StatusSeeOther)
		return
	}

	if !created {
		http.Redirect(w, r, fmt.Sprintf("/employee/timesheets/edit?id=%d&info=Timesheet+for+this+week+already+exists", ts.ID), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/employee/timesheets/edit?id=%d", ts.ID), http.StatusSeeOther)
}

func (h *EmployeeHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadOwnTimesheet(w, r, user, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	if !ts.EditableBy(user) {
		http.Redirect(w, r, "/employee/timesheets?error=This+timesheet+can+no+longer+be+edited", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":      user,
		"Timesheet": ts,
		"Days":      timesheets.EntriesByDay(ts),
		"Error":     r.URL.Query().Get("error"),
		"Info":      r.URL.Query().Get("info"),
	}
	h.templates["timesheet-edit"].ExecuteTemplate(w, "base", data)
}

// Update replaces the week's entries and either keeps the sheet editable
// (save) or submits it for approval.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/employee/timesheets?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	ts, ok := h.loadOwnTimesheet(w, r, user, r.FormValue("id"))
	if !ok {
		return
	}

	if !ts.EditableBy(user) {
		http.Redirect(w, r, "/employee/timesheets?error=This+timesheet+can+no+longer+be+edited", http.StatusSeeOther)
		return
	}

	action := timesheets.ActionSave
	if r.FormValue("action") == "submit" {
		action = timesheets.ActionSubmit
	}

	form := timesheets.ParseWeekForm(r.Form, ts.WeekStart)

	if err := timesheets.SaveWeek(h.db, ts, form, action, time.Now().UTC()); err != nil {
		editURL := fmt.Sprintf("/employee/timesheets/edit?id=%d", ts.ID)
		switch {
		case errors.Is(err, models.ErrNoHours):
			http.Redirect(w, r, editURL+"&error=Enter+some+hours+before+submitting", http.StatusSeeOther)
		case errors.Is(err, models.ErrFutureWeek):
			http.Redirect(w, r, editURL+"&error=Cannot+submit+a+timesheet+for+a+future+week", http.StatusSeeOther)
		default:
			log.Error().Err(err).Uint("timesheet_id", ts.ID).Msg("failed to save timesheet")
			http.Redirect(w, r, editURL+"&error=Something+went+wrong,+please+try+again+later", http.StatusSeeOther)
		}
		return
	}

	if action == timesheets.ActionSubmit {
		notify.TimesheetSubmitted(ts, user)
		http.Redirect(w, r, "/employee/timesheets?success=Timesheet+submitted+for+approval", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/employee/timesheets?success=Timesheet+saved+as+draft", http.StatusSeeOther)
}

// Delete removes a draft timesheet. Only drafts can go.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/employee/timesheets?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	ts, ok := h.loadOwnTimesheet(w, r, user, r.FormValue("id"))
	if !ok {
		return
	}

	if err := timesheets.Delete(h.db, ts); err != nil {
		if errors.Is(err, models.ErrNotDraft) {
			http.Redirect(w, r, "/employee/timesheets?error=Only+draft+timesheets+can+be+deleted", http.StatusSeeOther)
			return
		}
		log.Error().Err(err).Uint("timesheet_id", ts.ID).Msg("failed to delete timesheet")
		http.Redirect(w, r, "/employee/timesheets?error=Something+went+wrong,+please+try+again+later", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/employee/timesheets?success=Draft+timesheet+deleted", http.StatusSeeOther)
}

func (h *EmployeeHandler) View(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadOwnTimesheet(w, r, user, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	data := map[string]interface{}{
		"User":       user,
		"Timesheet":  ts,
		"Days":       timesheets.EntriesByDay(ts),
		"TotalHours": ts.TotalHours(),
	}
	h.templates["timesheet-view"].ExecuteTemplate(w, "base", data)
}

// ExportCSV is the personal per-entry export, honoring the same status
// and date-window filters as the admin surface.
func (h *EmployeeHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	window := reports.ParseWindow(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now().UTC())

	query := h.db.Preload("Entries").Preload("User").
		Where("user_id = ?", user.ID).
		Where("week_start >= ? AND week_start <= ?", window.Start, window.End).
		Order("week_start desc")

	if status, ok := models.ParseStatus(r.URL.Query().Get("status")); ok {
		query = query.Where("status = ?", status)
	}

	var sheets []models.Timesheet
	query.Find(&sheets)

	filename := fmt.Sprintf("timesheets_%s.csv", user.Username)
	if err := reports.WriteCSV(w, filename, reports.EmployeeExportHeader, reports.EmployeeExportRows(sheets)); err != nil {
		log.Error().Err(err).Msg("failed to write employee export")
	}
}

// loadOwnTimesheet fetches a timesheet by id and enforces ownership.
// Other employees' timesheets are off limits regardless of state.
func (h *EmployeeHandler) loadOwnTimesheet(w http.ResponseWriter, r *http.Request, user *models.User, idStr string) (*models.Timesheet, bool) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Redirect(w, r, "/employee/timesheets?error=Invalid+timesheet+ID", http.StatusSeeOther)
		return nil, false
	}

	var ts models.Timesheet
	if err := h.db.Preload("Entries").First(&ts, id).Error; err != nil {
		http.Redirect(w, r, "/employee/timesheets?error=Timesheet+not+found", http.StatusSeeOther)
		return nil, false
	}

	if ts.UserID != user.ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}

	return &ts, true
}
