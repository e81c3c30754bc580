package services

import (
	"testing"
	"time"

	. "monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestPopulateReportFollowupDueDates(t *testing.T) {
	c := &Case{ReportSentDate: timePtr(day(2023, time.February, 28))}

	PopulateReportFollowupDueDates(c, true)

	assert.Equal(t, day(2023, time.March, 7), *c.ReportFollowupWeek1DueDate)
	assert.Equal(t, day(2023, time.March, 28), *c.ReportFollowupWeek4DueDate)
	assert.Equal(t, day(2023, time.May, 23), *c.ReportFollowupWeek12DueDate)
}

func TestPopulateReportFollowupDueDatesPreservesManualDates(t *testing.T) {
	manual := day(2023, time.March, 10)
	c := &Case{
		ReportSentDate:             timePtr(day(2023, time.February, 28)),
		ReportFollowupWeek1DueDate: timePtr(manual),
	}

	// Sent date unchanged: only unset dates are filled.
	PopulateReportFollowupDueDates(c, false)
	assert.Equal(t, manual, *c.ReportFollowupWeek1DueDate)
	assert.Equal(t, day(2023, time.March, 28), *c.ReportFollowupWeek4DueDate)

	// Changing the sent date recomputes everything.
	PopulateReportFollowupDueDates(c, true)
	assert.Equal(t, day(2023, time.March, 7), *c.ReportFollowupWeek1DueDate)
}

func TestPopulateReportFollowupDueDatesWithoutSentDate(t *testing.T) {
	c := &Case{}
	PopulateReportFollowupDueDates(c, true)
	assert.Nil(t, c.ReportFollowupWeek1DueDate)
	assert.Nil(t, c.ReportFollowupWeek4DueDate)
	assert.Nil(t, c.ReportFollowupWeek12DueDate)
}

func TestPopulateTwelveWeekChaserDueDate(t *testing.T) {
	c := &Case{TwelveWeekUpdateRequestedDate: timePtr(day(2023, time.May, 23))}

	PopulateTwelveWeekChaserDueDate(c)
	assert.Equal(t, day(2023, time.May, 30), *c.TwelveWeek1WeekChaserDueDate)

	// Always recomputed when the requested date moves.
	c.TwelveWeekUpdateRequestedDate = timePtr(day(2023, time.June, 1))
	PopulateTwelveWeekChaserDueDate(c)
	assert.Equal(t, day(2023, time.June, 8), *c.TwelveWeek1WeekChaserDueDate)
}

func TestPopulateNoContactDueDates(t *testing.T) {
	c := &Case{SevenDayNoContactEmailSentDate: timePtr(day(2023, time.January, 2))}

	PopulateNoContactDueDates(c)

	assert.Equal(t, day(2023, time.January, 9), *c.NoContactOneWeekChaserDueDate)
	assert.Equal(t, day(2023, time.January, 30), *c.NoContactFourWeekChaserDueDate)
}

func TestNextActionDue(t *testing.T) {
	today := day(2023, time.March, 10)

	t.Run("No outstanding dates", func(t *testing.T) {
		_, _, ok := NextActionDue(&Case{}, today)
		assert.False(t, ok)
	})

	t.Run("Earliest unsent chaser wins", func(t *testing.T) {
		c := &Case{ReportSentDate: timePtr(day(2023, time.February, 28))}
		PopulateReportFollowupDueDates(c, true)

		due, tense, ok := NextActionDue(c, today)
		assert.True(t, ok)
		assert.Equal(t, day(2023, time.March, 7), due)
		assert.Equal(t, TensePast, tense)
	})

	t.Run("Sent chasers are skipped", func(t *testing.T) {
		c := &Case{ReportSentDate: timePtr(day(2023, time.February, 28))}
		PopulateReportFollowupDueDates(c, true)
		c.ReportFollowupWeek1SentDate = timePtr(day(2023, time.March, 7))

		due, tense, ok := NextActionDue(c, today)
		assert.True(t, ok)
		assert.Equal(t, day(2023, time.March, 28), due)
		assert.Equal(t, TenseFuture, tense)
	})

	t.Run("Due today is present tense", func(t *testing.T) {
		c := &Case{ReportFollowupWeek1DueDate: timePtr(day(2023, time.March, 10))}

		_, tense, ok := NextActionDue(c, today)
		assert.True(t, ok)
		assert.Equal(t, TensePresent, tense)
	})
}

func TestNoContactEscalationAfterFourWeekChaser(t *testing.T) {
	c := &Case{}
	c.ID = "case-1"
	c.SevenDayNoContactEmailSentDate = timePtr(day(2023, time.January, 2))
	PopulateNoContactDueDates(c)
	c.NoContactOneWeekChaserSentDate = timePtr(day(2023, time.January, 9))
	c.NoContactFourWeekChaserSentDate = timePtr(day(2023, time.January, 30))

	// Both chasers sent and still no contact: escalate a week after the
	// four-week chaser went out.
	due, tense, ok := NextActionDue(c, day(2023, time.February, 10))
	assert.True(t, ok)
	assert.Equal(t, day(2023, time.February, 6), due)
	assert.Equal(t, TensePast, tense)

	link, ok := OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "No contact details escalation due", link.Label)

	// Deciding the organisation cannot be contacted retires it.
	c.NoPsbContact = BoolYes
	_, _, ok = NextActionDue(c, day(2023, time.February, 10))
	assert.False(t, ok)
}

func TestTwelveWeekEscalationAfterOneWeekChaser(t *testing.T) {
	c := &Case{}
	c.ID = "case-1"
	c.TwelveWeekUpdateRequestedDate = timePtr(day(2023, time.May, 23))
	PopulateTwelveWeekChaserDueDate(c)
	c.TwelveWeek1WeekChaserSentDate = timePtr(day(2023, time.May, 30))

	due, _, ok := NextActionDue(c, day(2023, time.June, 7))
	assert.True(t, ok)
	assert.Equal(t, day(2023, time.June, 6), due)

	link, ok := OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "Escalation for 12-week update due", link.Label)

	// Acknowledging the correspondence retires the escalation.
	c.TwelveWeekCorrespondenceAcknowledgedDate = timePtr(day(2023, time.June, 5))
	_, _, ok = NextActionDue(c, day(2023, time.June, 7))
	assert.False(t, ok)
}

func TestOverdueLink(t *testing.T) {
	c := &Case{}
	c.ID = "case-1"

	_, ok := OverdueLink(c)
	assert.False(t, ok)

	// No-contact chasers come before report follow-ups in the walk.
	c.SevenDayNoContactEmailSentDate = timePtr(day(2023, time.January, 2))
	PopulateNoContactDueDates(c)
	c.ReportSentDate = timePtr(day(2023, time.January, 1))
	PopulateReportFollowupDueDates(c, true)

	link, ok := OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "No contact details 1-week chaser due", link.Label)
	assert.Equal(t, "/cases/case-1/edit-no-psb-response", link.URL)

	c.NoContactOneWeekChaserSentDate = timePtr(day(2023, time.January, 9))
	c.NoContactFourWeekChaserSentDate = timePtr(day(2023, time.January, 30))

	link, ok = OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "1-week follow-up to report due", link.Label)

	// The 12-week deadline is retired by requesting the update.
	c.ReportFollowupWeek1SentDate = timePtr(day(2023, time.January, 8))
	c.ReportFollowupWeek4SentDate = timePtr(day(2023, time.January, 29))

	link, ok = OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "12-week update due", link.Label)

	c.TwelveWeekUpdateRequestedDate = timePtr(day(2023, time.March, 26))
	PopulateTwelveWeekChaserDueDate(c)

	link, ok = OverdueLink(c)
	assert.True(t, ok)
	assert.Equal(t, "1-week follow-up for 12-week update due", link.Label)
}
