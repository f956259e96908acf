package handlers

import (
	"errors"
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

type ManagerHandler struct {
	config    *config.Config
	db        *gorm.DB
	templates map[string]*template.Template
}

func NewManagerHandler(cfg *config.Config, db *gorm.DB, templates map[string]*template.Template) *ManagerHandler {
	return &ManagerHandler{
		config:    cfg,
		db:        db,
		templates: templates,
	}
}

// Dashboard lists every submitted timesheet awaiting review. Managers
// act on any submitted sheet regardless of reporting line.
func (h *ManagerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var pending []models.Timesheet
	h.db.Preload("User").Preload("Entries").
		Where("status = ?", models.StatusSubmitted).
		Order("week_start desc").
		Find(&pending)

	data := map[string]interface{}{
		"User":         user,
		"Pending":      pending,
		"PendingCount": len(pending),
		"Error":        r.URL.Query().Get("error"),
		"Success":      r.URL.Query().Get("success"),
	}
	h.templates["manager-dashboard"].ExecuteTemplate(w, "base", data)
}

func (h *ManagerHandler) View(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadTimesheet(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	if !ts.ReviewableByManager() {
		http.Redirect(w, r, "/manager/dashboard?error=Timesheet+is+not+in+a+reviewable+state", http.StatusSeeOther)
		return
	}

	data := map[string]interface{}{
		"User":       user,
		"Timesheet":  ts,
		"Days":       timesheets.EntriesByDay(ts),
		"TotalHours": ts.TotalHours(),
	}
	h.templates["manager-review"].ExecuteTemplate(w, "base", data)
}

func (h *ManagerHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true)
}

func (h *ManagerHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false)
}

// review handles both decisions: only submitted sheets move, anything
// else is a warning no-op that changes nothing.
func (h *ManagerHandler) review(w http.ResponseWriter, r *http.Request, approve bool) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/manager/dashboard?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	ts, ok := h.loadTimesheet(w, r, r.FormValue("id"))
	if !ok {
		return
	}

	comment := r.FormValue("manager_comment")

	var err error
	if approve {
		err = timesheets.Approve(h.db, ts, comment, time.Now().UTC())
	} else {
		err = timesheets.Reject(h.db, ts, comment)
	}

	if err != nil {
		if errors.Is(err, models.ErrNotSubmitted) {
			http.Redirect(w, r, "/manager/dashboard?error=Timesheet+is+not+submitted", http.StatusSeeOther)
			return
		}
		log.Error().Err(err).Uint("timesheet_id", ts.ID).Msg("failed to record review decision")
		http.Redirect(w, r, "/manager/dashboard?error=Something+went+wrong,+please+try+again+later", http.StatusSeeOther)
		return
	}

	if approve {
		notify.TimesheetApproved(ts, &ts.User)
		http.Redirect(w, r, "/manager/dashboard?success=Timesheet+approved", http.StatusSeeOther)
		return
	}
	notify.TimesheetRejected(ts, &ts.User)
	http.Redirect(w, r, "/manager/dashboard?success=Timesheet+rejected", http.StatusSeeOther)
}

// History lists reviewed (approved or rejected) timesheets with the
// status and date-window filters.
func (h *ManagerHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	sheets, window, statusFilter := h.reviewedSheets(r)

	data := map[string]interface{}{
		"User":         user,
		"Timesheets":   sheets,
		"StatusFilter": statusFilter,
		"StartDate":    window.StartString(),
		"EndDate":      window.EndString(),
		"Warning":      windowWarning(window),
	}
	h.templates["manager-history"].ExecuteTemplate(w, "base", data)
}

// HistoryExport is the row-per-timesheet CSV of reviewed sheets.
func (h *ManagerHandler) HistoryExport(w http.ResponseWriter, r *http.Request) {
	sheets, _, _ := h.reviewedSheets(r)

	if err := reports.WriteCSV(w, "timesheet_history.csv", reports.ManagerHistoryHeader, reports.ManagerHistoryRows(sheets)); err != nil {
		log.Error().Err(err).Msg("failed to write manager history export")
	}
}

func (h *ManagerHandler) reviewedSheets(r *http.Request) ([]models.Timesheet, reports.Window, string) {
	window := reports.ParseWindow(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now().UTC())

	query := h.db.Preload("User").Preload("Entries").
		Where("week_start >= ? AND week_start <= ?", window.Start, window.End).
		Order("week_start desc")

	statusFilter := ""
	if status, ok := models.ParseStatus(r.URL.Query().Get("status")); ok &&
		(status == models.StatusApproved || status == models.StatusRejected) {
		statusFilter = string(status)
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []models.Status{models.StatusApproved, models.StatusRejected})
	}

	var sheets []models.Timesheet
	query.Find(&sheets)
	return sheets, window, statusFilter
}

func (h *ManagerHandler) loadTimesheet(w http.ResponseWriter, r *http.Request, idStr string) (*models.Timesheet, bool) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Redirect(w, r, "/manager/dashboard?error=Invalid+timesheet+ID", http.StatusSeeOther)
		return nil, false
	}

	var ts models.Timesheet
	if err := h.db.Preload("User").Preload("Entries").First(&ts, id).Error; err != nil {
		http.Redirect(w, r, "/manager/dashboard?error=Timesheet+not+found", http.StatusSeeOther)
		return nil, false
	}

	return &ts, true
}

func windowWarning(w reports.Window) string {
	if w.Fallback {
		return "Invalid date format. Use YYYY-MM-DD."
	}
	return ""
}
