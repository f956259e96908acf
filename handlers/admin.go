package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"timesheet/config"
	"timesheet/middleware"
	"timesheet/models"
	"timesheet/reports"
	"timesheet/timesheets"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AdminHandler struct {
	config    *config.Config
	db        *gorm.DB
	templates map[string]*template.Template
}

func NewAdminHandler(cfg *config.Config, db *gorm.DB, templates map[string]*template.Template) *AdminHandler {
	return &AdminHandler{
		config:    cfg,
		db:        db,
		templates: templates,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var userCount, employeeCount, managerCount, adminCount, timesheetCount int64
	h.db.Model(&models.User{}).Count(&userCount)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleEmployee).Count(&employeeCount)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleManager).Count(&managerCount)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)
	h.db.Model(&models.Timesheet{}).Count(&timesheetCount)

	data := map[string]interface{}{
		"User":           user,
		"UserCount":      userCount,
		"EmployeeCount":  employeeCount,
		"ManagerCount":   managerCount,
		"AdminCount":     adminCount,
		"TimesheetCount": timesheetCount,
	}
	h.templates["admin-dashboard"].ExecuteTemplate(w, "base", data)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	query := h.db.Preload("Manager").Order("role, username")
	roleFilter := ""
	if role, ok := models.ParseRole(r.URL.Query().Get("role")); ok {
		roleFilter = string(role)
		query = query.Where("role = ?", role)
	}

	var users []models.User
	query.Find(&users)

	data := map[string]interface{}{
		"User":       user,
		"Users":      users,
		"RoleFilter": roleFilter,
		"Error":      r.URL.Query().Get("error"),
		"Success":    r.URL.Query().Get("success"),
	}
	h.templates["admin-users"].ExecuteTemplate(w, "base", data)
}

func (h *AdminHandler) NewUserPage(w http.ResponseWriter, r *http.Request) {
	h.userFormPage(w, r, nil)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/users/new?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	role, ok := models.ParseRole(r.FormValue("role"))
	if !ok {
		http.Redirect(w, r, "/admin/users/new?error=Invalid+role", http.StatusSeeOther)
		return
	}

	if username == "" || email == "" || password == "" {
		http.Redirect(w, r, "/admin/users/new?error=Username,+email+and+password+are+required", http.StatusSeeOther)
		return
	}

	var existing int64
	h.db.Model(&models.User{}).Where("username = ? OR email = ?", username, email).Count(&existing)
	if existing > 0 {
		http.Redirect(w, r, "/admin/users/new?error=Username+or+email+already+exists", http.StatusSeeOther)
		return
	}

	managerID, ok := h.parseManagerRef(r.FormValue("manager_id"))
	if !ok {
		http.Redirect(w, r, "/admin/users/new?error=Manager+reference+must+point+to+a+manager", http.StatusSeeOther)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Redirect(w, r, "/admin/users/new?error=Failed+to+create+user", http.StatusSeeOther)
		return
	}

	newUser := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		ManagerID:    managerID,
	}

	if err := h.db.Create(&newUser).Error; err != nil {
		log.Error().Err(err).Str("username", username).Msg("failed to create user")
		http.Redirect(w, r, "/admin/users/new?error=Failed+to+create+user", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin/users?success=User+created+successfully", http.StatusSeeOther)
}

func (h *AdminHandler) EditUserPage(w http.ResponseWriter, r *http.Request) {
	target, ok := h.loadUser(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	h.userFormPage(w, r, target)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/users?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	target, ok := h.loadUser(w, r, r.FormValue("id"))
	if !ok {
		return
	}

	role, ok := models.ParseRole(r.FormValue("role"))
	if !ok {
		http.Redirect(w, r, fmt.Sprintf("/admin/users/edit?id=%d&error=Invalid+role", target.ID), http.StatusSeeOther)
		return
	}

	managerID, ok := h.parseManagerRef(r.FormValue("manager_id"))
	if !ok {
		http.Redirect(w, r, fmt.Sprintf("/admin/users/edit?id=%d&error=Manager+reference+must+point+to+a+manager", target.ID), http.StatusSeeOther)
		return
	}

	target.Username = r.FormValue("username")
	target.Email = r.FormValue("email")
	target.Role = role
	target.ManagerID = managerID

	// Password changes only when a new one is entered
	if newPassword := r.FormValue("password"); newPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			http.Redirect(w, r, fmt.Sprintf("/admin/users/edit?id=%d&error=Failed+to+update+user", target.ID), http.StatusSeeOther)
			return
		}
		target.PasswordHash = string(hashed)
	}

	if err := h.db.Save(target).Error; err != nil {
		log.Error().Err(err).Uint("user_id", target.ID).Msg("failed to update user")
		http.Redirect(w, r, fmt.Sprintf("/admin/users/edit?id=%d&error=Failed+to+update+user", target.ID), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin/users?success=User+updated+successfully", http.StatusSeeOther)
}

// DeleteUser removes the user together with their timesheets and
// entries; the store has no automatic cascade from users down.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/users?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	target, ok := h.loadUser(w, r, r.FormValue("id"))
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := timesheets.DeleteForUser(tx, target.ID); err != nil {
			return err
		}
		return tx.Delete(target).Error
	})
	if err != nil {
		log.Error().Err(err).Uint("user_id", target.ID).Msg("failed to delete user")
		http.Redirect(w, r, "/admin/users?error=Something+went+wrong,+please+try+again+later", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin/users?success=User+deleted", http.StatusSeeOther)
}

// Timesheets lists all timesheets filtered by status and date window.
func (h *AdminHandler) Timesheets(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	sheets, window, statusFilter := h.filteredSheets(r)

	data := map[string]interface{}{
		"User":         user,
		"Timesheets":   sheets,
		"StatusFilter": statusFilter,
		"StartDate":    window.StartString(),
		"EndDate":      window.EndString(),
		"Warning":      windowWarning(window),
		"Success":      r.URL.Query().Get("success"),
		"Error":        r.URL.Query().Get("error"),
	}
	h.templates["admin-timesheets"].ExecuteTemplate(w, "base", data)
}

func (h *AdminHandler) TimesheetView(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadTimesheet(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	data := map[string]interface{}{
		"User":       user,
		"Timesheet":  ts,
		"Days":       timesheets.EntriesByDay(ts),
		"TotalHours": ts.TotalHours(),
	}
	h.templates["admin-timesheet-view"].ExecuteTemplate(w, "base", data)
}

func (h *AdminHandler) EditTimesheetPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	ts, ok := h.loadTimesheet(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	data := map[string]interface{}{
		"User":      user,
		"Timesheet": ts,
		"Days":      timesheets.EntriesByDay(ts),
		"Statuses":  models.Statuses,
		"Error":     r.URL.Query().Get("error"),
	}
	h.templates["admin-timesheet-edit"].ExecuteTemplate(w, "base", data)
}

// UpdateTimesheet is the admin override: replace every entry and force
// the chosen status, regardless of the normal transition rules.
func (h *AdminHandler) UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/admin/timesheets?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	ts, ok := h.loadTimesheet(w, r, r.FormValue("id"))
	if !ok {
		return
	}

	status, ok := models.ParseStatus(r.FormValue("status"))
	if !ok {
		http.Redirect(w, r, fmt.Sprintf("/admin/timesheets/edit?id=%d&error=Invalid+status", ts.ID), http.StatusSeeOther)
		return
	}

	form := timesheets.ParseWeekForm(r.Form, ts.WeekStart)

	if err := timesheets.Override(h.db, ts, form, status, time.Now().UTC()); err != nil {
		log.Error().Err(err).Uint("timesheet_id", ts.ID).Msg("failed to override timesheet")
		http.Redirect(w, r, fmt.Sprintf("/admin/timesheets/edit?id=%d&error=Something+went+wrong,+please+try+again+later", ts.ID), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin/timesheets?success=Timesheet+updated+and+status+changed+to+%s", status), http.StatusSeeOther)
}

// ExportCSV is the global per-entry export with the same filters as the
// timesheet list.
func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sheets, _, _ := h.filteredSheets(r)

	if err := reports.WriteCSV(w, "timesheets_export.csv", reports.AdminExportHeader, reports.AdminExportRows(sheets)); err != nil {
		log.Error().Err(err).Msg("failed to write admin export")
	}
}

func (h *AdminHandler) filteredSheets(r *http.Request) ([]models.Timesheet, reports.Window, string) {
	window := reports.ParseWindow(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"), time.Now().UTC())

	query := h.db.Preload("User").Preload("Entries").
		Where("week_start >= ? AND week_start <= ?", window.Start, window.End).
		Order("week_start desc")

	statusFilter := ""
	if status, ok := models.ParseStatus(r.URL.Query().Get("status")); ok {
		statusFilter = string(status)
		query = query.Where("status = ?", status)
	}

	var sheets []models.Timesheet
	query.Find(&sheets)
	return sheets, window, statusFilter
}

func (h *AdminHandler) userFormPage(w http.ResponseWriter, r *http.Request, target *models.User) {
	user := middleware.GetUserFromContext(r.Context())

	var managers []models.User
	h.db.Where("role = ?", models.RoleManager).Order("username").Find(&managers)

	action := "create"
	if target != nil {
		action = "edit"
	}

	data := map[string]interface{}{
		"User":     user,
		"Target":   target,
		"Managers": managers,
		"Roles":    models.Roles,
		"Action":   action,
		"Error":    r.URL.Query().Get("error"),
	}
	h.templates["admin-user-form"].ExecuteTemplate(w, "base", data)
}

// parseManagerRef validates the optional manager_id form value: empty
// means none, otherwise it must reference an existing manager.
func (h *AdminHandler) parseManagerRef(value string) (*uint, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return nil, false
	}
	var manager models.User
	if err := h.db.Where("id = ? AND role = ?", parsed, models.RoleManager).First(&manager).Error; err != nil {
		return nil, false
	}
	id := uint(parsed)
	return &id, true
}

func (h *AdminHandler) loadUser(w http.ResponseWriter, r *http.Request, idStr string) (*models.User, bool) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Redirect(w, r, "/admin/users?error=Invalid+user+ID", http.StatusSeeOther)
		return nil, false
	}

	var target models.User
	if err := h.db.First(&target, id).Error; err != nil {
		http.Redirect(w, r, "/admin/users?error=User+not+found", http.StatusSeeOther)
		return nil, false
	}

	return &target, true
}

func (h *AdminHandler) loadTimesheet(w http.ResponseWriter, r *http.Request, idStr string) (*models.Timesheet, bool) {
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		http.Redirect(w, r, "/admin/timesheets?error=Invalid+timesheet+ID", http.StatusSeeOther)
		return nil, false
	}

	var ts models.Timesheet
	if err := h.db.Preload("User").Preload("Entries").First(&ts, id).Error; err != nil {
		http.Redirect(w, r, "/admin/timesheets?error=Timesheet+not+found", http.StatusSeeOther)
		return nil, false
	}

	return &ts, true
}
