package models

import "time"

// Form-post payloads. Every update payload carries the Version the form
// read, for the optimistic-lock check.

type CreateCaseRequest struct {
	OrganisationName string `json:"organisationName" form:"organisation_name"`
	HomePageURL      string `json:"homePageUrl"      form:"home_page_url"`
	EnforcementBody  string `json:"enforcementBody"  form:"enforcement_body"`
	PsbLocation      string `json:"psbLocation"      form:"psb_location"`
	IsComplaint      string `json:"isComplaint"      form:"is_complaint"`
	TestType         string `json:"testType"         form:"test_type"`
	PreviousCaseURL  string `json:"previousCaseUrl"  form:"previous_case_url"`
}

type UpdateCaseDetailsRequest struct {
	Version          int     `json:"version"          form:"version"`
	OrganisationName *string `json:"organisationName" form:"organisation_name"`
	HomePageURL      *string `json:"homePageUrl"      form:"home_page_url"`
	EnforcementBody  *string `json:"enforcementBody"  form:"enforcement_body"`
	PsbLocation      *string `json:"psbLocation"      form:"psb_location"`
	IsComplaint      *string `json:"isComplaint"      form:"is_complaint"`
	PreviousCaseURL  *string `json:"previousCaseUrl"  form:"previous_case_url"`
	AuditorID        *string `json:"auditorId"        form:"auditor_id"`
	CompleteDate     *time.Time `json:"completeDate"  form:"complete_date"`
}

type ReportCorrespondenceRequest struct {
	Version                      int        `json:"version" form:"version"`
	ReportSentDate               *time.Time `json:"reportSentDate"               form:"report_sent_date"`
	ReportAcknowledgedDate       *time.Time `json:"reportAcknowledgedDate"       form:"report_acknowledged_date"`
	ReportFollowupWeek1SentDate  *time.Time `json:"reportFollowupWeek1SentDate"  form:"report_followup_week_1_sent_date"`
	ReportFollowupWeek4SentDate  *time.Time `json:"reportFollowupWeek4SentDate"  form:"report_followup_week_4_sent_date"`
	ReportFollowupWeek12SentDate *time.Time `json:"reportFollowupWeek12SentDate" form:"report_followup_week_12_sent_date"`
	CompleteDate                 *time.Time `json:"completeDate"                 form:"complete_date"`
}

type TwelveWeekCorrespondenceRequest struct {
	Version                                  int        `json:"version" form:"version"`
	TwelveWeekUpdateRequestedDate            *time.Time `json:"twelveWeekUpdateRequestedDate"            form:"twelve_week_update_requested_date"`
	TwelveWeek1WeekChaserSentDate            *time.Time `json:"twelveWeek1WeekChaserSentDate"            form:"twelve_week_1_week_chaser_sent_date"`
	TwelveWeekCorrespondenceAcknowledgedDate *time.Time `json:"twelveWeekCorrespondenceAcknowledgedDate" form:"twelve_week_correspondence_acknowledged_date"`
	CompleteDate                             *time.Time `json:"completeDate"                             form:"complete_date"`
}

type NoContactRequest struct {
	Version                         int        `json:"version" form:"version"`
	EnableCorrespondenceProcess     *bool      `json:"enableCorrespondenceProcess"     form:"enable_correspondence_process"`
	NoPsbContact                    *string    `json:"noPsbContact"                    form:"no_psb_contact"`
	SevenDayNoContactEmailSentDate  *time.Time `json:"sevenDayNoContactEmailSentDate"  form:"seven_day_no_contact_email_sent_date"`
	NoContactOneWeekChaserSentDate  *time.Time `json:"noContactOneWeekChaserSentDate"  form:"no_contact_one_week_chaser_sent_date"`
	NoContactFourWeekChaserSentDate *time.Time `json:"noContactFourWeekChaserSentDate" form:"no_contact_four_week_chaser_sent_date"`
}

type ReviewChangesRequest struct {
	Version      int        `json:"version"      form:"version"`
	CompleteDate *time.Time `json:"completeDate" form:"complete_date"`
}

type CaseCloseRequest struct {
	Version                       int        `json:"version" form:"version"`
	IsReadyForFinalDecision       *string    `json:"isReadyForFinalDecision"       form:"is_ready_for_final_decision"`
	CaseCompleted                 *string    `json:"caseCompleted"                 form:"case_completed"`
	RecommendationForEnforcement  *string    `json:"recommendationForEnforcement"  form:"recommendation_for_enforcement"`
	RecommendationNotes           *string    `json:"recommendationNotes"           form:"recommendation_notes"`
	ComplianceEmailSentDate       *time.Time `json:"complianceEmailSentDate"       form:"compliance_email_sent_date"`
	SentToEnforcementBodySentDate *time.Time `json:"sentToEnforcementBodySentDate" form:"sent_to_enforcement_body_sent_date"`
	EnforcementBodyPursuing       *string    `json:"enforcementBodyPursuing"       form:"enforcement_body_pursuing"`
	CompleteDate                  *time.Time `json:"completeDate"                  form:"complete_date"`
}

type QAReviewRequest struct {
	Version              int     `json:"version" form:"version"`
	ReportReviewStatus   *string `json:"reportReviewStatus"   form:"report_review_status"`
	ReviewerID           *string `json:"reviewerId"           form:"reviewer_id"`
	ReportApprovedStatus *string `json:"reportApprovedStatus" form:"report_approved_status"`
}

type CheckResultUpdate struct {
	WcagDefinitionID string `json:"wcagDefinitionId" form:"wcag_definition_id"`
	CheckResultState string `json:"checkResultState" form:"check_result_state"`
	Notes            string `json:"notes"            form:"notes"`
}

type PageChecksRequest struct {
	Version      int                 `json:"version" form:"version"`
	Results      []CheckResultUpdate `json:"results"`
	CompleteDate *time.Time          `json:"completeDate" form:"complete_date"`
	NoErrorsDate *time.Time          `json:"noErrorsDate" form:"no_errors_date"`
}

type CheckRetestUpdate struct {
	CheckResultID string `json:"checkResultId" form:"check_result_id"`
	RetestState   string `json:"retestState"   form:"retest_state"`
	RetestNotes   string `json:"retestNotes"   form:"retest_notes"`
}

type PageRetestRequest struct {
	Version               int                 `json:"version" form:"version"`
	Results               []CheckRetestUpdate `json:"results"`
	RetestCompleteDate    *time.Time          `json:"retestCompleteDate"    form:"retest_complete_date"`
	RetestPageMissingDate *time.Time          `json:"retestPageMissingDate" form:"retest_page_missing_date"`
	RetestNotes           *string             `json:"retestNotes"           form:"retest_notes"`
}

type StatementResultUpdate struct {
	StatementCheckResultID string `json:"statementCheckResultId" form:"statement_check_result_id"`
	CheckResultState       string `json:"checkResultState"       form:"check_result_state"`
	RetestState            string `json:"retestState"            form:"retest_state"`
	ReportComment          string `json:"reportComment"          form:"report_comment"`
	AuditorNotes           string `json:"auditorNotes"           form:"auditor_notes"`
	RetestComment          string `json:"retestComment"          form:"retest_comment"`
}

type StatementChecksRequest struct {
	Version int                     `json:"version" form:"version"`
	Results []StatementResultUpdate `json:"results"`
}

type ContactRequest struct {
	Version   int    `json:"version" form:"version"`
	Name      string `json:"name"      form:"name"`
	JobTitle  string `json:"jobTitle"  form:"job_title"`
	Email     string `json:"email"     form:"email"`
	Preferred string `json:"preferred" form:"preferred"`
}

type ZendeskTicketRequest struct {
	Version int    `json:"version" form:"version"`
	URL     string `json:"url"     form:"url"`
	Summary string `json:"summary" form:"summary"`
}

type EqualityBodyCorrespondenceRequest struct {
	Version      int        `json:"version" form:"version"`
	Type         string     `json:"type"         form:"type"`
	Message      string     `json:"message"      form:"message"`
	Notes        string     `json:"notes"        form:"notes"`
	Status       string     `json:"status"       form:"status"`
	ZendeskURL   string     `json:"zendeskUrl"   form:"zendesk_url"`
	DateReceived *time.Time `json:"dateReceived" form:"date_received"`
}

type RetestRequest struct {
	Version               int        `json:"version" form:"version"`
	DateOfRetest          *time.Time `json:"dateOfRetest"          form:"date_of_retest"`
	RetestNotes           *string    `json:"retestNotes"           form:"retest_notes"`
	RetestComplianceState *string    `json:"retestComplianceState" form:"retest_compliance_state"`
	ComplianceNotes       *string    `json:"complianceNotes"       form:"compliance_notes"`
}

type ComplianceRequest struct {
	Version                         int     `json:"version" form:"version"`
	WebsiteComplianceStateInitial   *string `json:"websiteComplianceStateInitial"   form:"website_compliance_state_initial"`
	WebsiteComplianceNotesInitial   *string `json:"websiteComplianceNotesInitial"   form:"website_compliance_notes_initial"`
	WebsiteComplianceState12Week    *string `json:"websiteComplianceState12Week"    form:"website_compliance_state_12_week"`
	WebsiteComplianceNotes12Week    *string `json:"websiteComplianceNotes12Week"    form:"website_compliance_notes_12_week"`
	StatementComplianceStateInitial *string `json:"statementComplianceStateInitial" form:"statement_compliance_state_initial"`
	StatementComplianceNotesInitial *string `json:"statementComplianceNotesInitial" form:"statement_compliance_notes_initial"`
	StatementComplianceState12Week  *string `json:"statementComplianceState12Week"  form:"statement_compliance_state_12_week"`
	StatementComplianceNotes12Week  *string `json:"statementComplianceNotes12Week"  form:"statement_compliance_notes_12_week"`
}

type CommentRequest struct {
	Body string `json:"body" form:"body"`
}

type TaskRequest struct {
	Date        time.Time `json:"date"        form:"date"`
	Description string    `json:"description" form:"description"`
}
