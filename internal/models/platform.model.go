package models

import "time"

// Report is the draft accessibility report for a Case. Its existence
// moves the case from test_in_progress to report_in_progress.
type Report struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;uniqueIndex" json:"caseId"`

	NotesForEditor string `gorm:"type:text" json:"notesForEditor"`
	ReportVersion  int    `gorm:"not null;default:1" json:"reportVersion"`
}

// S3Report is one published copy of a rendered report in the object
// store. The newest copy per case carries LatestPublished.
type S3Report struct {
	BaseUUIDModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	Version         int       `gorm:"not null"                json:"version"`
	S3Directory     string    `gorm:"type:varchar(255)"       json:"s3Directory"`
	GUID            string    `gorm:"type:varchar(64);uniqueIndex" json:"guid"`
	HTML            string    `gorm:"type:text"               json:"-"`
	LatestPublished bool      `gorm:"not null;default:false"  json:"latestPublished"`
	PublishedAt     time.Time `json:"publishedAt"`
}

// EmailTemplate rows back the outbound correspondence; the templates
// command backs them up to disk one file per slug and restores them.
type EmailTemplate struct {
	BaseUUIDModel
	VersionedModel

	Slug     string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Name     string `gorm:"type:varchar(255)"                      json:"name"`
	Subject  string `gorm:"type:varchar(255)"                      json:"subject"`
	Template string `gorm:"type:text"                              json:"template"`
}

// PlatformSettings is the singleton row of site-wide configuration.
type PlatformSettings struct {
	BaseUUIDModel
	VersionedModel

	ActiveQAAuditorID      *string `gorm:"type:varchar(64)" json:"activeQaAuditorId"`
	AccessibilityStatement string  `gorm:"type:text"        json:"accessibilityStatement"`
	PrivacyNotice          string  `gorm:"type:text"        json:"privacyNotice"`
	MoreInformation        string  `gorm:"type:text"        json:"moreInformation"`
}
