package database

import (
	"timesheet/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database, migrates the schema and seeds the initial
// accounts. The returned handle is passed explicitly to everything that
// touches storage; there is no package-level session.
func Init(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.User{}, &models.Timesheet{}, &models.TimesheetEntry{}); err != nil {
		return nil, err
	}

	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

// seedUsers creates one account per role when the users table is empty,
// wiring the employee to the seeded manager.
func seedUsers(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	seeds := []struct {
		username string
		password string
		role     models.Role
	}{
		{"admin", "admin", models.RoleAdmin},
		{"manager", "manager", models.RoleManager},
		{"employee", "employee", models.RoleEmployee},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var managerID *uint
		for _, s := range seeds {
			hashed, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := models.User{
				Username:     s.username,
				Email:        s.username + "@example.com",
				PasswordHash: string(hashed),
				Role:         s.role,
			}
			if s.role == models.RoleEmployee {
				user.ManagerID = managerID
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if s.role == models.RoleManager {
				id := user.ID
				managerID = &id
			}
			log.Info().Str("username", s.username).Str("role", string(s.role)).Msg("seeded user")
		}
		return nil
	})
}
