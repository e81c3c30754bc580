package models

type Contact struct {
	BaseUUIDModel
	VersionedModel
	CaseID string `gorm:"type:varchar(64);not null;index" json:"caseId"`

	Name     string `gorm:"type:varchar(255)"              json:"name"`
	JobTitle string `gorm:"type:varchar(255)"              json:"jobTitle"`
	Email    string `gorm:"type:varchar(255)"              json:"email"`
	Preferred string `gorm:"type:varchar(10);default:unknown" json:"preferred"`

	IsDeleted bool `gorm:"not null;default:false" json:"isDeleted"`
}
