package models

import "time"

const (
	StatementCheckOverview      = "overview"
	StatementCheckWebsite       = "website"
	StatementCheckCompliance    = "compliance"
	StatementCheckNonAccessible = "non_accessible"
	StatementCheckPreparation   = "preparation"
	StatementCheckFeedback      = "feedback"
	StatementCheckCustom        = "custom"
)

// StatementCheck is one entry in the shared accessibility-statement
// requirement catalogue, versioned by validity window like WcagDefinition.
type StatementCheck struct {
	BaseUUIDModel
	VersionedModel

	Type            string `gorm:"type:varchar(20);not null;index" json:"type"`
	Label           string `gorm:"type:varchar(255);not null"      json:"label"`
	SuccessCriteria string `gorm:"type:text"                       json:"successCriteria"`
	ReportText      string `gorm:"type:text"                       json:"reportText"`
	Position        int    `gorm:"not null;default:0"              json:"position"`

	DateStart *time.Time `json:"dateStart"`
	DateEnd   *time.Time `json:"dateEnd"`
}

func (s *StatementCheck) ValidAt(date time.Time) bool {
	if s.DateStart != nil && date.Before(*s.DateStart) {
		return false
	}
	if s.DateEnd != nil && date.After(*s.DateEnd) {
		return false
	}
	return true
}

const (
	StatementResultNotTested = "not_tested"
	StatementResultYes       = "yes"
	StatementResultNo        = "no"
)

// StatementCheckResult is a per-audit answer to a statement check.
// Custom issues are rows of type custom with no parent StatementCheck.
type StatementCheckResult struct {
	BaseUUIDModel
	VersionedModel

	AuditID          string  `gorm:"type:varchar(64);not null;index" json:"auditId"`
	StatementCheckID *string `gorm:"type:varchar(64);index"          json:"statementCheckId"`

	Type string `gorm:"type:varchar(20);not null" json:"type"`

	CheckResultState string `gorm:"type:varchar(20);default:not_tested" json:"checkResultState"`
	RetestState      string `gorm:"type:varchar(20);default:not_tested" json:"retestState"`
	ReportComment    string `gorm:"type:text"                           json:"reportComment"`
	AuditorNotes     string `gorm:"type:text"                           json:"auditorNotes"`
	RetestComment    string `gorm:"type:text"                           json:"retestComment"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`

	StatementCheck *StatementCheck `gorm:"foreignKey:StatementCheckID" json:"statementCheck,omitempty"`
}

const (
	StatementPageStageInitial    = "initial"
	StatementPageStageTwelveWeek = "twelve_week"
)

// StatementPage records a URL at which an accessibility statement was
// found, tagged with the stage at which it was added.
type StatementPage struct {
	BaseUUIDModel
	AuditID string `gorm:"type:varchar(64);not null;index" json:"auditId"`

	URL        string `gorm:"type:varchar(2048)"              json:"url"`
	BackupURL  string `gorm:"type:varchar(2048)"              json:"backupUrl"`
	AddedStage string `gorm:"type:varchar(20);default:initial" json:"addedStage"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`
}
