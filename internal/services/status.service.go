package services

import (
	"fmt"

	. "monitor/internal/models"
)

// PageLink is a label + URL pair pointing at the next page a caseworker
// should visit for a case in its current status.
type PageLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type statusRule struct {
	status string
	guard  func(c *Case) bool
}

// statusRules is the ordered guard table. ComputeStatus walks it top to
// bottom and returns the first status whose guard holds.
var statusRules = []statusRule{
	{StatusDeactivated, func(c *Case) bool {
		return c.IsDeactivated()
	}},
	{StatusComplete, func(c *Case) bool {
		return c.EnforcementBodyPursuing == EBPursuingCompleted ||
			c.CaseCompleted == CaseCompletedNoSend
	}},
	{StatusInCorrespondenceWithEB, func(c *Case) bool {
		return c.SentToEnforcementBodySentDate != nil &&
			c.EnforcementBodyPursuing == EBPursuingInProgress
	}},
	{StatusCaseClosedSentToEB, func(c *Case) bool {
		return c.SentToEnforcementBodySentDate != nil
	}},
	{StatusCaseClosedWaitingToSend, func(c *Case) bool {
		return c.CaseCompleted == CaseCompletedSend
	}},
	{StatusFinalDecisionDue, func(c *Case) bool {
		return c.ReviewChangesCompleteDate != nil &&
			c.IsReadyForFinalDecision == BoolYes &&
			c.CaseCompleted == CaseCompletedNoDecision
	}},
	{StatusReviewingChanges, func(c *Case) bool {
		return c.Audit.RetestStarted()
	}},
	{StatusAfter12WeekCorrespondence, func(c *Case) bool {
		return c.TwelveWeekUpdateRequestedDate != nil &&
			c.TwelveWeekCorrespondenceAcknowledgedDate == nil
	}},
	{StatusAwaiting12WeekDeadline, func(c *Case) bool {
		return c.ReportAcknowledgedDate != nil
	}},
	{StatusInReportCorrespondence, func(c *Case) bool {
		return c.ReportSentDate != nil
	}},
	{StatusReportReadyToSend, func(c *Case) bool {
		return c.ReportApprovedStatus == ApprovedStatusApproved
	}},
	{StatusQAInProgress, func(c *Case) bool {
		return c.ReviewerID != nil && c.ReportReviewStatus == ReviewStatusDone
	}},
	{StatusReadyToQA, func(c *Case) bool {
		return c.ReportReviewStatus == ReviewStatusDone
	}},
	{StatusReportInProgress, func(c *Case) bool {
		return c.Report != nil
	}},
	{StatusTestInProgress, func(c *Case) bool {
		return c.AuditorID != nil
	}},
	{StatusUnassigned, func(c *Case) bool {
		return true
	}},
}

// ComputeStatus derives the workflow status from the case and its audit.
// Idempotent; callers assign the result to case.Status inside the save
// transaction.
func ComputeStatus(c *Case) string {
	for _, rule := range statusRules {
		if rule.guard(c) {
			// An unresponsive body skips the correspondence stages
			// entirely once the report is ready.
			if rule.status == StatusReportReadyToSend && c.NoPsbContact == BoolYes {
				return StatusFinalDecisionDue
			}
			return rule.status
		}
	}
	return StatusUnassigned
}

// QA statuses used only in list views, separate from the main machine.
const (
	QAStatusUnknown    = "unknown"
	QAStatusUnassigned = "unassigned_qa_case"
	QAStatusInQA       = "in_qa"
	QAStatusApproved   = "qa_approved"
)

func QAStatus(c *Case) string {
	switch {
	case c.ReportApprovedStatus == ApprovedStatusApproved:
		return QAStatusApproved
	case c.ReviewerID != nil:
		return QAStatusInQA
	case c.ReportReviewStatus == ReviewStatusDone:
		return QAStatusUnassigned
	default:
		return QAStatusUnknown
	}
}

// NextPageLink returns the canonical next action for the case's status.
// The two correspondence statuses delegate to the chaser walk so the
// link lands on the first chaser not yet sent.
func NextPageLink(c *Case) PageLink {
	caseURL := func(page string) string {
		return fmt.Sprintf("/cases/%s/%s", c.ID, page)
	}

	switch ComputeStatus(c) {
	case StatusUnassigned:
		return PageLink{"Assign an auditor", caseURL("edit-case-details")}
	case StatusTestInProgress:
		return PageLink{"Edit test", caseURL("audit")}
	case StatusReportInProgress:
		return PageLink{"Edit report", caseURL("report")}
	case StatusReadyToQA:
		return PageLink{"Assign a reviewer", caseURL("edit-qa-process")}
	case StatusQAInProgress:
		return PageLink{"Continue QA", caseURL("edit-qa-process")}
	case StatusReportReadyToSend:
		return PageLink{"Send report", caseURL("edit-report-sent-on")}
	case StatusInReportCorrespondence, StatusAfter12WeekCorrespondence:
		if link, ok := OverdueLink(c); ok {
			return link
		}
		return PageLink{"View correspondence", caseURL("report-correspondence")}
	case StatusAwaiting12WeekDeadline:
		return PageLink{"Request 12-week update", caseURL("edit-12-week-update-requested")}
	case StatusReviewingChanges:
		return PageLink{"Review changes", caseURL("retest")}
	case StatusFinalDecisionDue:
		return PageLink{"Record final decision", caseURL("edit-case-close")}
	case StatusCaseClosedWaitingToSend:
		return PageLink{"Send case to the enforcement body", caseURL("edit-enforcement-body-metadata")}
	case StatusCaseClosedSentToEB, StatusInCorrespondenceWithEB:
		return PageLink{"View equality body correspondence", caseURL("equality-body-correspondence")}
	case StatusComplete, StatusDeactivated:
		return PageLink{"View case", caseURL("view")}
	}
	return PageLink{"View case", caseURL("view")}
}
