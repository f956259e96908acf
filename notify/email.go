package notify

import (
	"fmt"

	"timesheet/models"

	"github.com/rs/zerolog/log"
)

// Send is a placeholder mailer: it logs the message instead of
// delivering it. Swap in a real mail client here when one is wired up.
func Send(subject, recipient, body string) {
	log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("email (stub)")
}

func TimesheetSubmitted(ts *models.Timesheet, owner *models.User) {
	Send(
		"Timesheet submitted",
		owner.Email,
		fmt.Sprintf("Your timesheet for the week of %s was submitted for approval.", ts.WeekStart.Format("2006-01-02")),
	)
}

func TimesheetApproved(ts *models.Timesheet, owner *models.User) {
	Send(
		"Timesheet approved",
		owner.Email,
		fmt.Sprintf("Your timesheet for the week of %s was approved.", ts.WeekStart.Format("2006-01-02")),
	)
}

func TimesheetRejected(ts *models.Timesheet, owner *models.User) {
	Send(
		"Timesheet rejected",
		owner.Email,
		fmt.Sprintf("Your timesheet for the week of %s was rejected. Please review the comments and resubmit.", ts.WeekStart.Format("2006-01-02")),
	)
}
