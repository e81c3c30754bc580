package models

import "time"

// ZendeskTicket links a Case to the support ticket raised with the
// audited body. IDWithinCase is normally allocated max+1 per Case but is
// overridden with the ticket number when the URL matches the Zendesk
// agent-tickets pattern.
type ZendeskTicket struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	URL          string `gorm:"type:varchar(2048)"     json:"url"`
	Summary      string `gorm:"type:text"              json:"summary"`
	IDWithinCase int    `gorm:"not null;default:0"     json:"idWithinCase"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`
}

const (
	EBCorrespondenceQuestion = "question"
	EBCorrespondenceRetest   = "retest"
)

const (
	EBCorrespondenceUnresolved = "unresolved"
	EBCorrespondenceResolved   = "resolved"
)

// EqualityBodyCorrespondence is one exchange with the enforcement body
// after a case has been escalated to it.
type EqualityBodyCorrespondence struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	Type         string     `gorm:"type:varchar(20);default:question"   json:"type"`
	Message      string     `gorm:"type:text"                           json:"message"`
	Notes        string     `gorm:"type:text"                           json:"notes"`
	Status       string     `gorm:"type:varchar(20);default:unresolved" json:"status"`
	DateReceived *time.Time `json:"dateReceived"`
	ZendeskURL   string     `gorm:"type:varchar(2048)"                  json:"zendeskUrl"`
	IDWithinCase int        `gorm:"not null;default:0"                  json:"idWithinCase"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`
}

const (
	RetestComplianceNotKnown           = "not_known"
	RetestComplianceCompliant          = "compliant"
	RetestCompliancePartiallyCompliant = "partially_compliant"
	RetestComplianceNotCompliant       = "not_compliant"
)

// Retest is an equality-body-requested re-evaluation performed after the
// 12-week retest. IDWithinCase 0 is the anchor retest seeded from the
// 12-week results; it does not count toward the number of retests.
type Retest struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	IDWithinCase         int        `gorm:"not null;default:0"                 json:"idWithinCase"`
	DateOfRetest         *time.Time `json:"dateOfRetest"`
	RetestNotes          string     `gorm:"type:text"                          json:"retestNotes"`
	RetestComplianceState string    `gorm:"type:varchar(30);default:not_known" json:"retestComplianceState"`
	ComplianceNotes      string     `gorm:"type:text"                          json:"complianceNotes"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`

	Pages []RetestPage `gorm:"foreignKey:RetestID" json:"pages,omitempty"`
}

func (r *Retest) IsAnchor() bool {
	return r.IDWithinCase == 0
}

type RetestPage struct {
	BaseUUIDModel
	RetestID string `gorm:"type:varchar(64);not null;index" json:"retestId"`
	PageID   string `gorm:"type:varchar(64);not null;index" json:"pageId"`

	MissingDate    *time.Time `json:"missingDate"`
	AdditionalIssuesNotes string `gorm:"type:text" json:"additionalIssuesNotes"`
	CompleteDate   *time.Time `json:"completeDate"`

	CheckResults []RetestCheckResult `gorm:"foreignKey:RetestPageID" json:"checkResults,omitempty"`
}

type RetestCheckResult struct {
	BaseUUIDModel
	RetestID      string `gorm:"type:varchar(64);not null;index" json:"retestId"`
	RetestPageID  string `gorm:"type:varchar(64);not null;index" json:"retestPageId"`
	CheckResultID string `gorm:"type:varchar(64);not null;index" json:"checkResultId"`

	RetestState string `gorm:"type:varchar(20);default:not_retested" json:"retestState"`
	RetestNotes string `gorm:"type:text"                             json:"retestNotes"`
}
