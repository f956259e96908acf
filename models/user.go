package models

import (
	"time"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lists every valid role, in the order shown in admin forms.
var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Username     string      `gorm:"uniqueIndex;not null;size:80" json:"username"`
	Email        string      `gorm:"uniqueIndex;not null;size:120" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Role         Role        `gorm:"not null;size:20" json:"role"`
	ManagerID    *uint       `gorm:"index" json:"manager_id"`
	Manager      *User       `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Timesheets   []Timesheet `gorm:"foreignKey:UserID" json:"timesheets,omitempty"`
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageTimesheetFor reports whether the user may create or edit
// timesheets owned by userID. Admins may touch any timesheet; everyone
// else only their own.
func (u *User) CanManageTimesheetFor(userID uint) bool {
	if u.IsAdmin() {
		return true
	}
	return u.ID == userID
}

// CanViewTimesheetFor reports whether the user may view timesheets owned
// by userID. Managers and admins see all.
func (u *User) CanViewTimesheetFor(userID uint) bool {
	if u.IsAdmin() || u.IsManager() {
		return true
	}
	return u.ID == userID
}

// LandingPath is where a freshly authenticated user gets redirected.
func (u *User) LandingPath() string {
	switch u.Role {
	case RoleManager:
		return "/manager/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/employee/timesheets"
	}
}
