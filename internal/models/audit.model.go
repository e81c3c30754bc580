package models

import "time"

// Audit is the structured accessibility test attached to a Case: pages,
// WCAG check results and the statement evaluation. The 12-week retest
// lives on the same row, keyed off RetestDate.
type Audit struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	DateOfTest time.Time  `json:"dateOfTest"`
	RetestDate *time.Time `json:"retestDate"`

	ScreenSizeNotes string `gorm:"type:text" json:"screenSizeNotes"`
	AuditNotes      string `gorm:"type:text" json:"auditNotes"`
	RetestNotes     string `gorm:"type:text" json:"retestNotes"`

	// Set when a published-report field changes after publication,
	// cleared when the republish banner is dismissed.
	PublishedReportDataUpdatedTime *time.Time `json:"publishedReportDataUpdatedTime"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`

	Pages                 []Page                 `gorm:"foreignKey:AuditID" json:"pages,omitempty"`
	CheckResults          []CheckResult          `gorm:"foreignKey:AuditID" json:"checkResults,omitempty"`
	StatementCheckResults []StatementCheckResult `gorm:"foreignKey:AuditID" json:"statementCheckResults,omitempty"`
	StatementPages        []StatementPage        `gorm:"foreignKey:AuditID" json:"statementPages,omitempty"`
}

func (a *Audit) RetestStarted() bool {
	return a != nil && a.RetestDate != nil
}

const (
	PageTypeHome      = "home"
	PageTypeContact   = "contact"
	PageTypeStatement = "statement"
	PageTypePDF       = "pdf"
	PageTypeForm      = "form"
	PageTypeExtra     = "extra"
	// Pseudo-page used by the check form to mean "applies to every HTML
	// page"; edits against it propagate to the real pages.
	PageTypeAll = "all"
)

// MandatoryPageTypes are auto-created with every Audit and cannot be
// hard-deleted.
var MandatoryPageTypes = []string{
	PageTypeHome,
	PageTypeContact,
	PageTypeStatement,
	PageTypePDF,
	PageTypeForm,
}

type Page struct {
	BaseUUIDModel
	VersionedModel
	AuditID string `gorm:"type:varchar(64);not null;index" json:"auditId"`

	PageType string `gorm:"type:varchar(20);not null" json:"pageType"`
	Name     string `gorm:"type:varchar(255)"         json:"name"`
	URL      string `gorm:"type:varchar(2048)"        json:"url"`
	Location string `gorm:"type:varchar(255)"         json:"location"`
	NotFound string `gorm:"type:varchar(10);default:no" json:"notFound"`

	CompleteDate *time.Time `json:"completeDate"`
	NoErrorsDate *time.Time `json:"noErrorsDate"`

	RetestCompleteDate    *time.Time `json:"retestCompleteDate"`
	RetestPageMissingDate *time.Time `json:"retestPageMissingDate"`
	RetestNotes           string     `gorm:"type:text" json:"retestNotes"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`
}

func (p *Page) IsMandatory() bool {
	for _, t := range MandatoryPageTypes {
		if p.PageType == t {
			return true
		}
	}
	return false
}

// IsHTML reports whether the page takes part in all-page propagation.
// PDFs are excluded.
func (p *Page) IsHTML() bool {
	return p.PageType != PageTypePDF
}

func (p *Page) Title() string {
	if p.Name != "" {
		return p.Name
	}
	return p.PageType
}
