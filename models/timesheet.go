package models

import (
	"errors"
	"time"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Statuses lists every valid status, in lifecycle order.
var Statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return Status(s), true
	}
	return "", false
}

var (
	ErrNotSubmitted = errors.New("timesheet is not submitted")
	ErrNoHours      = errors.New("timesheet has no hours entered")
	ErrFutureWeek   = errors.New("timesheet week has not started yet")
	ErrNotDraft     = errors.New("only draft timesheets can be deleted")
)

// Timesheet is the weekly record for one user. WeekStart is always the
// Monday of the week it covers; at most one timesheet exists per
// (user, week_start) pair, enforced by lookup-before-create.
type Timesheet struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	UserID         uint             `gorm:"not null;index" json:"user_id"`
	User           User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeekStart      time.Time        `gorm:"not null;type:date;index" json:"week_start"`
	Status         Status           `gorm:"not null;size:20;default:draft" json:"status"`
	SubmittedAt    *time.Time       `json:"submitted_at"`
	ApprovedAt     *time.Time       `json:"approved_at"`
	ManagerComment string           `gorm:"type:text" json:"manager_comment"`
	Entries        []TimesheetEntry `gorm:"foreignKey:TimesheetID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
}

// EditableBy reports whether u may edit this timesheet's entries.
// Admins edit anything in any state; owners edit while the sheet is
// draft or rejected. Rejected sheets are directly editable — there is
// no separate reopen step before a resubmission.
func (t *Timesheet) EditableBy(u *User) bool {
	if u.IsAdmin() {
		return true
	}
	if t.UserID != u.ID {
		return false
	}
	return t.Status == StatusDraft || t.Status == StatusRejected
}

// CanSubmit checks the submit guards: some hours must be entered and the
// week must have started (week-start not after the current week's Monday).
func (t *Timesheet) CanSubmit(totalHours float64, now time.Time) error {
	if totalHours <= 0 {
		return ErrNoHours
	}
	if t.WeekStart.After(MondayOf(now)) {
		return ErrFutureWeek
	}
	return nil
}

// Submit moves a draft or rejected timesheet to submitted.
func (t *Timesheet) Submit(now time.Time) {
	t.Status = StatusSubmitted
	t.SubmittedAt = &now
	t.ApprovedAt = nil
}

// Approve moves a submitted timesheet to approved, recording the
// manager's comment. Approved is terminal.
func (t *Timesheet) Approve(comment string, now time.Time) error {
	if t.Status != StatusSubmitted {
		return ErrNotSubmitted
	}
	t.Status = StatusApproved
	t.ApprovedAt = &now
	t.ManagerComment = comment
	return nil
}

// Reject moves a submitted timesheet to rejected. The approval timestamp
// stays unset and the owner may edit and resubmit.
func (t *Timesheet) Reject(comment string) error {
	if t.Status != StatusSubmitted {
		return ErrNotSubmitted
	}
	t.Status = StatusRejected
	t.ManagerComment = comment
	return nil
}

// ApplyStatus is the admin override: force any status and set or clear
// the timestamps that status implies.
func (t *Timesheet) ApplyStatus(s Status, now time.Time) {
	t.Status = s
	switch s {
	case StatusSubmitted:
		t.SubmittedAt = &now
		t.ApprovedAt = nil
	case StatusApproved:
		t.ApprovedAt = &now
	default:
		t.SubmittedAt = nil
		t.ApprovedAt = nil
	}
}

// Deletable reports whether the owner may delete the timesheet.
func (t *Timesheet) Deletable() bool {
	return t.Status == StatusDraft
}

// ReviewableByManager reports whether the sheet is in a state a manager
// review page shows.
func (t *Timesheet) ReviewableByManager() bool {
	return t.Status == StatusSubmitted || t.Status == StatusApproved
}

// TotalHours sums the loaded entries.
func (t *Timesheet) TotalHours() float64 {
	var total float64
	for _, e := range t.Entries {
		total += e.Hours
	}
	return total
}

// WeekDates returns the seven dates the timesheet covers, Monday first.
func (t *Timesheet) WeekDates() []time.Time {
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = t.WeekStart.AddDate(0, 0, i)
	}
	return dates
}
