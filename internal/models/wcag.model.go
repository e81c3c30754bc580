package models

import "time"

const (
	WcagTypeAxe    = "axe"
	WcagTypeManual = "manual"
	WcagTypePDF    = "pdf"
)

// WcagDefinition is one entry in the shared WCAG catalogue. Definitions
// are versioned in place by validity window: the checks applied to an
// audit are those whose window contains the audit's date of test.
type WcagDefinition struct {
	BaseUUIDModel
	VersionedModel

	Type              string `gorm:"type:varchar(20);not null;index" json:"type"`
	SubType           string `gorm:"type:varchar(50)"                json:"subType"`
	Name              string `gorm:"type:varchar(255);not null"      json:"name"`
	Description       string `gorm:"type:text"                       json:"description"`
	URLOnW3           string `gorm:"column:url_on_w3;type:varchar(2048)" json:"urlOnW3"`
	ReportBoilerplate string `gorm:"type:text"                       json:"reportBoilerplate"`

	DateStart *time.Time `json:"dateStart"`
	DateEnd   *time.Time `json:"dateEnd"`
}

// ValidAt reports whether the definition's validity window contains the
// given test date. Nil bounds are open.
func (w *WcagDefinition) ValidAt(date time.Time) bool {
	if w.DateStart != nil && date.Before(*w.DateStart) {
		return false
	}
	if w.DateEnd != nil && date.After(*w.DateEnd) {
		return false
	}
	return true
}

const (
	CheckResultNotTested = "not_tested"
	CheckResultError     = "error"
	CheckResultNoError   = "no_error"
)

const (
	RetestNotRetested = "not_retested"
	RetestFixed       = "fixed"
	RetestNotFixed    = "not_fixed"
)

// CheckResult is one WCAG check applied to one page of an audit. Rows
// are created lazily the first time a tester opens the page's check form.
type CheckResult struct {
	BaseUUIDModel
	VersionedModel

	AuditID          string `gorm:"type:varchar(64);not null;index:idx_check_results_audit_page" json:"auditId"`
	PageID           string `gorm:"type:varchar(64);not null;index:idx_check_results_audit_page" json:"pageId"`
	WcagDefinitionID string `gorm:"type:varchar(64);not null;index" json:"wcagDefinitionId"`

	// Mirrors WcagDefinition.Type for cheap filtering.
	Type string `gorm:"type:varchar(20);not null" json:"type"`

	CheckResultState string `gorm:"type:varchar(20);default:not_tested"   json:"checkResultState"`
	Notes            string `gorm:"type:text"                             json:"notes"`
	RetestState      string `gorm:"type:varchar(20);default:not_retested" json:"retestState"`
	RetestNotes      string `gorm:"type:text"                             json:"retestNotes"`

	WcagDefinition *WcagDefinition `gorm:"foreignKey:WcagDefinitionID" json:"wcagDefinition,omitempty"`
}
