package services

import (
	"testing"
	"time"

	. "monitor/internal/models"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func stringPtr(s string) *string {
	return &s
}

func TestComputeStatus(t *testing.T) {
	now := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setup    func(c *Case)
		expected string
	}{
		{
			name:     "New case is unassigned",
			setup:    func(c *Case) {},
			expected: StatusUnassigned,
		},
		{
			name: "Auditor assigned starts the test",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
			},
			expected: StatusTestInProgress,
		},
		{
			name: "Report row moves to report in progress",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
				c.Report = &Report{}
			},
			expected: StatusReportInProgress,
		},
		{
			name: "Review done without a reviewer is ready to QA",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
				c.Report = &Report{}
				c.ReportReviewStatus = ReviewStatusDone
			},
			expected: StatusReadyToQA,
		},
		{
			name: "Review done with a reviewer is QA in progress",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
				c.Report = &Report{}
				c.ReportReviewStatus = ReviewStatusDone
				c.ReviewerID = stringPtr("reviewer-1")
			},
			expected: StatusQAInProgress,
		},
		{
			name: "Approval makes the report ready to send",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
				c.Report = &Report{}
				c.ReportApprovedStatus = ApprovedStatusApproved
			},
			expected: StatusReportReadyToSend,
		},
		{
			name: "Unresponsive body skips correspondence after approval",
			setup: func(c *Case) {
				c.AuditorID = stringPtr("auditor-1")
				c.Report = &Report{}
				c.ReportApprovedStatus = ApprovedStatusApproved
				c.NoPsbContact = BoolYes
			},
			expected: StatusFinalDecisionDue,
		},
		{
			name: "Sending the report starts correspondence",
			setup: func(c *Case) {
				c.ReportApprovedStatus = ApprovedStatusApproved
				c.ReportSentDate = timePtr(now)
			},
			expected: StatusInReportCorrespondence,
		},
		{
			name: "Acknowledgement waits for the 12-week deadline",
			setup: func(c *Case) {
				c.ReportSentDate = timePtr(now)
				c.ReportAcknowledgedDate = timePtr(now)
			},
			expected: StatusAwaiting12WeekDeadline,
		},
		{
			name: "Requesting the 12-week update enters 12-week correspondence",
			setup: func(c *Case) {
				c.ReportSentDate = timePtr(now)
				c.ReportAcknowledgedDate = timePtr(now)
				c.TwelveWeekUpdateRequestedDate = timePtr(now)
			},
			expected: StatusAfter12WeekCorrespondence,
		},
		{
			name: "Acknowledged 12-week update falls back to the deadline wait",
			setup: func(c *Case) {
				c.ReportSentDate = timePtr(now)
				c.ReportAcknowledgedDate = timePtr(now)
				c.TwelveWeekUpdateRequestedDate = timePtr(now)
				c.TwelveWeekCorrespondenceAcknowledgedDate = timePtr(now)
			},
			expected: StatusAwaiting12WeekDeadline,
		},
		{
			name: "Starting the retest reviews changes",
			setup: func(c *Case) {
				c.TwelveWeekUpdateRequestedDate = timePtr(now)
				c.Audit = &Audit{RetestDate: timePtr(now)}
			},
			expected: StatusReviewingChanges,
		},
		{
			name: "Ready for final decision once the retest review is done",
			setup: func(c *Case) {
				c.Audit = &Audit{RetestDate: timePtr(now)}
				c.ReviewChangesCompleteDate = timePtr(now)
				c.IsReadyForFinalDecision = BoolYes
				c.CaseCompleted = CaseCompletedNoDecision
			},
			expected: StatusFinalDecisionDue,
		},
		{
			name: "Ready flag alone keeps reviewing changes until the retest is done",
			setup: func(c *Case) {
				c.Audit = &Audit{RetestDate: timePtr(now)}
				c.IsReadyForFinalDecision = BoolYes
				c.CaseCompleted = CaseCompletedNoDecision
			},
			expected: StatusReviewingChanges,
		},
		{
			name: "Decision to send waits for the send",
			setup: func(c *Case) {
				c.CaseCompleted = CaseCompletedSend
			},
			expected: StatusCaseClosedWaitingToSend,
		},
		{
			name: "Sent to the enforcement body",
			setup: func(c *Case) {
				c.CaseCompleted = CaseCompletedSend
				c.SentToEnforcementBodySentDate = timePtr(now)
			},
			expected: StatusCaseClosedSentToEB,
		},
		{
			name: "Enforcement body pursuing",
			setup: func(c *Case) {
				c.SentToEnforcementBodySentDate = timePtr(now)
				c.EnforcementBodyPursuing = EBPursuingInProgress
			},
			expected: StatusInCorrespondenceWithEB,
		},
		{
			name: "Enforcement body finished completes the case",
			setup: func(c *Case) {
				c.SentToEnforcementBodySentDate = timePtr(now)
				c.EnforcementBodyPursuing = EBPursuingCompleted
			},
			expected: StatusComplete,
		},
		{
			name: "Decision not to send completes immediately",
			setup: func(c *Case) {
				c.CaseCompleted = CaseCompletedNoSend
			},
			expected: StatusComplete,
		},
		{
			name: "Deactivation beats everything",
			setup: func(c *Case) {
				c.CaseCompleted = CaseCompletedSend
				c.SentToEnforcementBodySentDate = timePtr(now)
				c.DeactivateDate = timePtr(now)
			},
			expected: StatusDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Case{
				CaseCompleted:           CaseCompletedNoDecision,
				EnforcementBodyPursuing: EBPursuingNotStarted,
				NoPsbContact:            BoolNo,
				IsReadyForFinalDecision: BoolNo,
			}
			tt.setup(c)

			status := ComputeStatus(c)
			assert.Equal(t, tt.expected, status)

			// Assigning the result must not change a second computation.
			c.Status = status
			assert.Equal(t, status, ComputeStatus(c))
		})
	}
}

func TestQAStatus(t *testing.T) {
	tests := []struct {
		name     string
		c        Case
		expected string
	}{
		{"No review yet", Case{}, QAStatusUnknown},
		{"Review done, no reviewer", Case{ReportReviewStatus: ReviewStatusDone}, QAStatusUnassigned},
		{"Reviewer assigned", Case{ReviewerID: stringPtr("u1")}, QAStatusInQA},
		{
			"Approved wins over reviewer",
			Case{ReviewerID: stringPtr("u1"), ReportApprovedStatus: ApprovedStatusApproved},
			QAStatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, QAStatus(&tt.c))
		})
	}
}

func TestNextPageLink(t *testing.T) {
	c := &Case{CaseCompleted: CaseCompletedNoDecision, NoPsbContact: BoolNo}
	c.ID = "case-1"

	link := NextPageLink(c)
	assert.Equal(t, "Assign an auditor", link.Label)
	assert.Equal(t, "/cases/case-1/edit-case-details", link.URL)

	c.AuditorID = stringPtr("auditor-1")
	assert.Equal(t, "Edit test", NextPageLink(c).Label)
}

func TestNextPageLinkDelegatesToOverdueChaser(t *testing.T) {
	now := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &Case{
		CaseCompleted: CaseCompletedNoDecision,
		NoPsbContact:  BoolNo,
	}
	c.ID = "case-1"
	c.ReportSentDate = timePtr(now)
	PopulateReportFollowupDueDates(c, true)

	link := NextPageLink(c)
	assert.Equal(t, "1-week follow-up to report due", link.Label)
	assert.Equal(t, "/cases/case-1/edit-report-followup-due-dates", link.URL)

	// Once the first follow-up is sent the link advances.
	c.ReportFollowupWeek1SentDate = timePtr(now.Add(7 * 24 * time.Hour))
	assert.Equal(t, "4-week follow-up to report due", NextPageLink(c).Label)
}
