package models

import "time"

const (
	TaskTypeReminder       = "reminder"
	TaskTypeQAComment      = "qa_comment"
	TaskTypeReportApproved = "report_approved"
)

// Task is a scheduled follow-up or notification owned by a user.
type Task struct {
	BaseUUIDModel

	Type        string    `gorm:"type:varchar(20);not null;index" json:"type"`
	UserID      string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	CaseID      string    `gorm:"column:base_case_id;type:varchar(64);not null;index" json:"caseId"`
	Date        time.Time `json:"date"`
	Description string    `gorm:"type:text"              json:"description"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
}

// Comment is a QA comment posted against a Case; posting one fans out
// qa_comment Tasks to the QA auditor group.
type Comment struct {
	BaseUUIDModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`
	UserID string `gorm:"type:varchar(64);not null"       json:"userId"`
	Body   string `gorm:"type:text"                       json:"body"`
	Hidden bool   `gorm:"not null;default:false"          json:"hidden"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
