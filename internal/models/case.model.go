package models

import (
	"fmt"
	"net/url"
	"time"

	"gorm.io/gorm"
)

// Workflow statuses, highest precedence first. ComputeStatus in the
// services package walks these in order and returns the first match.
const (
	StatusDeactivated              = "deactivated"
	StatusComplete                 = "complete"
	StatusInCorrespondenceWithEB   = "in_correspondence_with_enforcement_body"
	StatusCaseClosedSentToEB       = "case_closed_sent_to_enforcement_body"
	StatusCaseClosedWaitingToSend  = "case_closed_waiting_to_send"
	StatusFinalDecisionDue         = "final_decision_due"
	StatusReviewingChanges         = "reviewing_changes"
	StatusAfter12WeekCorrespondence = "after_12_week_correspondence"
	StatusAwaiting12WeekDeadline   = "awaiting_12_week_deadline"
	StatusInReportCorrespondence   = "in_report_correspondence"
	StatusReportReadyToSend        = "report_ready_to_send"
	StatusQAInProgress             = "qa_in_progress"
	StatusReadyToQA                = "ready_to_qa"
	StatusReportInProgress         = "report_in_progress"
	StatusTestInProgress           = "test_in_progress"
	StatusUnassigned               = "unassigned"
)

const (
	EnforcementBodyEHRC = "ehrc"
	EnforcementBodyECNI = "ecni"
)

const (
	PsbLocationEngland = "england"
	PsbLocationScotland = "scotland"
	PsbLocationWales   = "wales"
	PsbLocationNI      = "ni"
	PsbLocationUKWide  = "uk_wide"
	PsbLocationUnknown = "unknown"
)

const (
	CaseCompletedSend     = "complete_send"
	CaseCompletedNoSend   = "complete_no_send"
	CaseCompletedNoDecision = "no_decision"
)

const (
	ReviewStatusNotStarted = "not_started"
	ReviewStatusInProgress = "in_progress"
	ReviewStatusDone       = "yes"
)

const (
	ApprovedStatusNotStarted = "not_started"
	ApprovedStatusInProgress = "in_progress"
	ApprovedStatusApproved   = "approved"
)

// Progress of the enforcement body after a case is escalated to it.
const (
	EBPursuingNotStarted = "not_started"
	EBPursuingInProgress = "in_progress"
	EBPursuingCompleted  = "completed"
)

// Case is the root aggregate: one audited website or mobile app and the
// whole lifecycle of its audit, correspondence and enforcement outcome.
type Case struct {
	BaseUUIDModel
	VersionedModel

	CaseNumber int    `gorm:"not null;uniqueIndex"            json:"caseNumber"`
	TestType   string `gorm:"type:varchar(20);not null;default:simplified" json:"testType"`

	OrganisationName string `gorm:"type:varchar(255);index"    json:"organisationName"`
	HomePageURL      string `gorm:"type:varchar(2048)"         json:"homePageUrl"`
	Domain           string `gorm:"type:varchar(255)"          json:"domain"`
	EnforcementBody  string `gorm:"type:varchar(20)"           json:"enforcementBody"`
	PsbLocation      string `gorm:"type:varchar(20);default:unknown" json:"psbLocation"`
	IsComplaint      string `gorm:"type:varchar(10);default:no" json:"isComplaint"`
	PreviousCaseURL  string `gorm:"type:varchar(2048)"         json:"previousCaseUrl"`

	AuditorID  *string `gorm:"type:varchar(64);index" json:"auditorId"`
	Auditor    *User   `gorm:"foreignKey:AuditorID"   json:"auditor,omitempty"`
	ReviewerID *string `gorm:"type:varchar(64);index" json:"reviewerId"`
	Reviewer   *User   `gorm:"foreignKey:ReviewerID"  json:"reviewer,omitempty"`

	// Derived by the status engine at save time; never written directly.
	Status string `gorm:"type:varchar(64);index;default:unassigned" json:"status"`

	CompletedDate  *time.Time `json:"completedDate"`
	DeactivateDate *time.Time `json:"deactivateDate"`
	DeactivateNote string     `gorm:"type:text" json:"deactivateNote"`

	// Per-stage completion dates driving the navigation counters.
	CaseDetailsCompleteDate              *time.Time `json:"caseDetailsCompleteDate"`
	TestingDetailsCompleteDate           *time.Time `json:"testingDetailsCompleteDate"`
	ReportDetailsCompleteDate            *time.Time `json:"reportDetailsCompleteDate"`
	QAProcessCompleteDate                *time.Time `json:"qaProcessCompleteDate"`
	ContactDetailsCompleteDate           *time.Time `json:"contactDetailsCompleteDate"`
	ReportCorrespondenceCompleteDate     *time.Time `json:"reportCorrespondenceCompleteDate"`
	TwelveWeekCorrespondenceCompleteDate *time.Time `json:"twelveWeekCorrespondenceCompleteDate"`
	ReviewChangesCompleteDate            *time.Time `json:"reviewChangesCompleteDate"`
	FinalWebsiteCompleteDate             *time.Time `json:"finalWebsiteCompleteDate"`
	FinalStatementCompleteDate           *time.Time `json:"finalStatementCompleteDate"`
	CaseCloseCompleteDate                *time.Time `json:"caseCloseCompleteDate"`
	EnforcementCorrespondenceCompleteDate *time.Time `json:"enforcementCorrespondenceCompleteDate"`

	// Report correspondence track.
	ReportSentDate              *time.Time `json:"reportSentDate"`
	ReportAcknowledgedDate      *time.Time `json:"reportAcknowledgedDate"`
	ReportFollowupWeek1SentDate *time.Time `gorm:"column:report_followup_week_1_sent_date"  json:"reportFollowupWeek1SentDate"`
	ReportFollowupWeek4SentDate *time.Time `gorm:"column:report_followup_week_4_sent_date"  json:"reportFollowupWeek4SentDate"`
	ReportFollowupWeek12SentDate *time.Time `gorm:"column:report_followup_week_12_sent_date" json:"reportFollowupWeek12SentDate"`
	ReportFollowupWeek1DueDate  *time.Time `gorm:"column:report_followup_week_1_due_date"   json:"reportFollowupWeek1DueDate"`
	ReportFollowupWeek4DueDate  *time.Time `gorm:"column:report_followup_week_4_due_date"   json:"reportFollowupWeek4DueDate"`
	ReportFollowupWeek12DueDate *time.Time `gorm:"column:report_followup_week_12_due_date"  json:"reportFollowupWeek12DueDate"`

	// 12-week update track.
	TwelveWeekUpdateRequestedDate           *time.Time `json:"twelveWeekUpdateRequestedDate"`
	TwelveWeek1WeekChaserSentDate           *time.Time `gorm:"column:twelve_week_1_week_chaser_sent_date" json:"twelveWeek1WeekChaserSentDate"`
	TwelveWeek1WeekChaserDueDate            *time.Time `gorm:"column:twelve_week_1_week_chaser_due_date"  json:"twelveWeek1WeekChaserDueDate"`
	TwelveWeekCorrespondenceAcknowledgedDate *time.Time `json:"twelveWeekCorrespondenceAcknowledgedDate"`

	// No-contact-details track.
	SevenDayNoContactEmailSentDate *time.Time `json:"sevenDayNoContactEmailSentDate"`
	NoContactOneWeekChaserSentDate *time.Time `json:"noContactOneWeekChaserSentDate"`
	NoContactOneWeekChaserDueDate  *time.Time `json:"noContactOneWeekChaserDueDate"`
	NoContactFourWeekChaserSentDate *time.Time `json:"noContactFourWeekChaserSentDate"`
	NoContactFourWeekChaserDueDate *time.Time `json:"noContactFourWeekChaserDueDate"`

	// Closing decision.
	CaseCompleted                string     `gorm:"type:varchar(30);default:no_decision" json:"caseCompleted"`
	RecommendationForEnforcement string     `gorm:"type:varchar(30)"                     json:"recommendationForEnforcement"`
	RecommendationNotes          string     `gorm:"type:text"                            json:"recommendationNotes"`
	ComplianceEmailSentDate      *time.Time `json:"complianceEmailSentDate"`
	SentToEnforcementBodySentDate *time.Time `json:"sentToEnforcementBodySentDate"`
	EnforcementBodyPursuing      string     `gorm:"type:varchar(20);default:not_started" json:"enforcementBodyPursuing"`

	EnableCorrespondenceProcess bool   `gorm:"not null;default:false" json:"enableCorrespondenceProcess"`
	NoPsbContact                string `gorm:"type:varchar(10);default:no" json:"noPsbContact"`
	IsReadyForFinalDecision     string `gorm:"type:varchar(10);default:no" json:"isReadyForFinalDecision"`

	ReportReviewStatus   string `gorm:"type:varchar(20);default:not_started" json:"reportReviewStatus"`
	ReportApprovedStatus string `gorm:"type:varchar(20);default:not_started" json:"reportApprovedStatus"`

	// Pre-2020 cases imported from the legacy system. Display only.
	ArchivedData string `gorm:"type:text" json:"archivedData,omitempty"`

	Audit      *Audit          `gorm:"foreignKey:CaseID" json:"audit,omitempty"`
	Report     *Report         `gorm:"foreignKey:CaseID" json:"report,omitempty"`
	Compliance *CaseCompliance `gorm:"foreignKey:CaseID" json:"compliance,omitempty"`
	Contacts   []Contact       `gorm:"foreignKey:CaseID" json:"contacts,omitempty"`
}

func (Case) TableName() string {
	return "cases"
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	c.Domain = DomainOf(c.HomePageURL)
	return nil
}

// CaseIdentifier renders the human-facing label, #S-N for simplified
// tests and #M-N for mobile.
func (c *Case) CaseIdentifier() string {
	prefix := "S"
	if c.TestType == TestTypeMobile {
		prefix = "M"
	}
	return fmt.Sprintf("#%s-%d", prefix, c.CaseNumber)
}

const (
	TestTypeSimplified = "simplified"
	TestTypeMobile     = "mobile"
)

func (c *Case) IsDeactivated() bool {
	return c.DeactivateDate != nil
}

// DomainOf extracts the host component of a URL, or "" when the URL
// has no scheme.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	return parsed.Hostname()
}

// CaseCompliance holds the website and statement compliance decisions.
// It is a separate row so compliance edits race on their own version.
type CaseCompliance struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"caseId"`

	WebsiteComplianceStateInitial  string `gorm:"type:varchar(30);default:unknown" json:"websiteComplianceStateInitial"`
	WebsiteComplianceNotesInitial  string `gorm:"type:text"                        json:"websiteComplianceNotesInitial"`
	WebsiteComplianceState12Week   string `gorm:"column:website_compliance_state_12_week;type:varchar(30);default:unknown" json:"websiteComplianceState12Week"`
	WebsiteComplianceNotes12Week   string `gorm:"column:website_compliance_notes_12_week;type:text" json:"websiteComplianceNotes12Week"`
	StatementComplianceStateInitial string `gorm:"type:varchar(30);default:unknown" json:"statementComplianceStateInitial"`
	StatementComplianceNotesInitial string `gorm:"type:text"                        json:"statementComplianceNotesInitial"`
	StatementComplianceState12Week string `gorm:"column:statement_compliance_state_12_week;type:varchar(30);default:unknown" json:"statementComplianceState12Week"`
	StatementComplianceNotes12Week string `gorm:"column:statement_compliance_notes_12_week;type:text" json:"statementComplianceNotes12Week"`
}

const (
	ComplianceUnknown            = "unknown"
	ComplianceCompliant          = "compliant"
	CompliancePartiallyCompliant = "partially_compliant"
	ComplianceNotCompliant       = "not_compliant"
)

// CaseHistory is the user-visible stream of notes and status changes.
type CaseHistory struct {
	BaseUUIDModel
	CaseID    string `gorm:"type:varchar(64);not null;index" json:"caseId"`
	CreatedBy *string `gorm:"type:varchar(64)"               json:"createdBy"`
	EventType string `gorm:"type:varchar(20);default:note"   json:"eventType"`
	Value     string `gorm:"type:text"                       json:"value"`
}

const (
	CaseHistoryNote         = "note"
	CaseHistoryStatusChange = "status_change"
)
