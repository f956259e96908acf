package main

import (
	"html/template"
	"net/http"
	"os"
	"time"

	"timesheet/config"
	"timesheet/database"
	"timesheet/handlers"
	"timesheet/middleware"
	"timesheet/models"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg := config.Load()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	// Define template functions
	funcMap := template.FuncMap{
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"clock": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"timestamp": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02 15:04")
		},
	}

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{
		"login",
		"employee-timesheets", "timesheet-new", "timesheet-edit", "timesheet-view",
		"manager-dashboard", "manager-review", "manager-history",
		"admin-dashboard", "admin-users", "admin-user-form",
		"admin-timesheets", "admin-timesheet-view", "admin-timesheet-edit",
	}
	for _, page := range pages {
		templates[page] = template.Must(template.New("").Funcs(funcMap).ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, db, templates)
	employeeHandler := handlers.NewEmployeeHandler(cfg, db, templates)
	managerHandler := handlers.NewManagerHandler(cfg, db, templates)
	adminHandler := handlers.NewAdminHandler(cfg, db, templates)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(db))

		r.Get("/logout", authHandler.Logout)

		// Employee surface: login is enough, ownership is checked per
		// operation so admins can reach their own timesheets too
		r.Get("/employee/timesheets", employeeHandler.List)
		r.Get("/employee/timesheets/new", employeeHandler.NewPage)
		r.Post("/employee/timesheets/new", employeeHandler.Create)
		r.Get("/employee/timesheets/edit", employeeHandler.EditPage)
		r.Post("/employee/timesheets/edit", employeeHandler.Update)
		r.Post("/employee/timesheets/delete", employeeHandler.Delete)
		r.Get("/employee/timesheets/view", employeeHandler.View)
		r.Get("/employee/timesheets/export", employeeHandler.ExportCSV)

		// Manager only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleManager))
			r.Get("/manager/dashboard", managerHandler.Dashboard)
			r.Get("/manager/timesheets/view", managerHandler.View)
			r.Post("/manager/timesheets/approve", managerHandler.Approve)
			r.Post("/manager/timesheets/reject", managerHandler.Reject)
			r.Get("/manager/history", managerHandler.History)
			r.Get("/manager/history/export", managerHandler.HistoryExport)
		})

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/admin/dashboard", adminHandler.Dashboard)
			r.Get("/admin/users", adminHandler.Users)
			r.Get("/admin/users/new", adminHandler.NewUserPage)
			r.Post("/admin/users/new", adminHandler.CreateUser)
			r.Get("/admin/users/edit", adminHandler.EditUserPage)
			r.Post("/admin/users/edit", adminHandler.UpdateUser)
			r.Post("/admin/users/delete", adminHandler.DeleteUser)
			r.Get("/admin/timesheets", adminHandler.Timesheets)
			r.Get("/admin/timesheets/view", adminHandler.TimesheetView)
			r.Get("/admin/timesheets/edit", adminHandler.EditTimesheetPage)
			r.Post("/admin/timesheets/edit", adminHandler.UpdateTimesheet)
			r.Get("/admin/timesheets/export", adminHandler.ExportCSV)
		})
	})

	log.Info().Str("port", cfg.ServerPort).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
