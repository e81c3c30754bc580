package services

import (
	"fmt"
	"time"

	. "monitor/internal/models"
)

// Chaser offsets from the initiating event.
const (
	oneWeekOffset    = 7 * 24 * time.Hour
	fourWeekOffset   = 28 * 24 * time.Hour
	twelveWeekOffset = 84 * 24 * time.Hour
	// Escalation after the last chaser in a track has been sent.
	escalationOffset = 7 * 24 * time.Hour
)

// Tense of a due date relative to today.
const (
	TensePast    = "past"
	TensePresent = "present"
	TenseFuture  = "future"
)

func addOffset(base time.Time, offset time.Duration) *time.Time {
	due := base.Add(offset)
	return &due
}

// PopulateReportFollowupDueDates fills the three report follow-up due
// dates from ReportSentDate. When the sent date itself changed all
// three are recomputed; otherwise only unset ones are filled.
func PopulateReportFollowupDueDates(c *Case, sentDateChanged bool) {
	if c.ReportSentDate == nil {
		return
	}
	if sentDateChanged || c.ReportFollowupWeek1DueDate == nil {
		c.ReportFollowupWeek1DueDate = addOffset(*c.ReportSentDate, oneWeekOffset)
	}
	if sentDateChanged || c.ReportFollowupWeek4DueDate == nil {
		c.ReportFollowupWeek4DueDate = addOffset(*c.ReportSentDate, fourWeekOffset)
	}
	if sentDateChanged || c.ReportFollowupWeek12DueDate == nil {
		c.ReportFollowupWeek12DueDate = addOffset(*c.ReportSentDate, twelveWeekOffset)
	}
}

// PopulateTwelveWeekChaserDueDate always recomputes the 1-week chaser
// due date from the update-requested date.
func PopulateTwelveWeekChaserDueDate(c *Case) {
	if c.TwelveWeekUpdateRequestedDate == nil {
		return
	}
	c.TwelveWeek1WeekChaserDueDate = addOffset(*c.TwelveWeekUpdateRequestedDate, oneWeekOffset)
}

// PopulateNoContactDueDates derives the no-contact chaser due dates.
// The escalation after the four-week chaser is +7 days from its sent
// date.
func PopulateNoContactDueDates(c *Case) {
	if c.SevenDayNoContactEmailSentDate != nil {
		if c.NoContactOneWeekChaserDueDate == nil {
			c.NoContactOneWeekChaserDueDate = addOffset(*c.SevenDayNoContactEmailSentDate, oneWeekOffset)
		}
		if c.NoContactFourWeekChaserDueDate == nil {
			c.NoContactFourWeekChaserDueDate = addOffset(*c.SevenDayNoContactEmailSentDate, fourWeekOffset)
		}
	}
}

// dueStep pairs a due date with the sent date that retires it and the
// link the UI should surface while it is outstanding.
type dueStep struct {
	due   *time.Time
	sent  *time.Time
	label string
	page  string
}

func chaserSteps(c *Case) []dueStep {
	steps := []dueStep{
		{c.NoContactOneWeekChaserDueDate, c.NoContactOneWeekChaserSentDate,
			"No contact details 1-week chaser due", "edit-no-psb-response"},
		{c.NoContactFourWeekChaserDueDate, c.NoContactFourWeekChaserSentDate,
			"No contact details 4-week chaser due", "edit-no-psb-response"},
	}
	// Escalation 7 days after the four-week chaser goes out, retired by
	// the report being sent or by the no-contact decision.
	if c.NoContactFourWeekChaserSentDate != nil && c.NoPsbContact != BoolYes {
		steps = append(steps, dueStep{
			addOffset(*c.NoContactFourWeekChaserSentDate, escalationOffset), c.ReportSentDate,
			"No contact details escalation due", "edit-no-psb-response"})
	}
	steps = append(steps,
		dueStep{c.ReportFollowupWeek1DueDate, c.ReportFollowupWeek1SentDate,
			"1-week follow-up to report due", "edit-report-followup-due-dates"},
		dueStep{c.ReportFollowupWeek4DueDate, c.ReportFollowupWeek4SentDate,
			"4-week follow-up to report due", "edit-report-followup-due-dates"})
	// The 12-week deadline is retired by requesting the update, not by
	// a chaser send.
	steps = append(steps, dueStep{
		c.ReportFollowupWeek12DueDate, c.TwelveWeekUpdateRequestedDate,
		"12-week update due", "edit-12-week-update-requested"})
	steps = append(steps, dueStep{
		c.TwelveWeek1WeekChaserDueDate, c.TwelveWeek1WeekChaserSentDate,
		"1-week follow-up for 12-week update due", "edit-12-week-one-week-followup-final"})
	// Escalation 7 days after the 12-week chaser goes out, retired by
	// the organisation acknowledging the correspondence.
	if c.TwelveWeek1WeekChaserSentDate != nil {
		steps = append(steps, dueStep{
			addOffset(*c.TwelveWeek1WeekChaserSentDate, escalationOffset),
			c.TwelveWeekCorrespondenceAcknowledgedDate,
			"Escalation for 12-week update due", "edit-12-week-one-week-followup-final"})
	}
	return steps
}

// NextActionDue returns the earliest due date whose follow-up has not
// yet been sent, with its tense relative to today.
func NextActionDue(c *Case, today time.Time) (time.Time, string, bool) {
	var earliest *time.Time
	for _, step := range chaserSteps(c) {
		if step.due == nil || step.sent != nil {
			continue
		}
		if earliest == nil || step.due.Before(*earliest) {
			earliest = step.due
		}
	}
	if earliest == nil {
		return time.Time{}, "", false
	}

	tense := TenseFuture
	y1, m1, d1 := earliest.Date()
	y2, m2, d2 := today.Date()
	switch {
	case y1 == y2 && m1 == m2 && d1 == d2:
		tense = TensePresent
	case earliest.Before(today):
		tense = TensePast
	}
	return *earliest, tense, true
}

// OverdueLink returns the action-required link for the first chaser in
// sequence whose due date has arrived without the chaser being sent.
func OverdueLink(c *Case) (PageLink, bool) {
	for _, step := range chaserSteps(c) {
		if step.due == nil || step.sent != nil {
			continue
		}
		return PageLink{
			Label: step.label,
			URL:   fmt.Sprintf("/cases/%s/%s", c.ID, step.page),
		}, true
	}
	return PageLink{}, false
}
