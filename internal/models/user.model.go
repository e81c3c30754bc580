package models

type User struct {
	BaseUUIDModel
	FirstName   string  `gorm:"type:varchar(255)"                 json:"firstName"`
	LastName    string  `gorm:"type:varchar(255)"                 json:"lastName"`
	Email       *string `gorm:"type:varchar(255);uniqueIndex"     json:"email"`
	Password    string  `gorm:"type:varchar(255)"                 json:"-"`
	IsAdmin     bool    `gorm:"not null;default:false"            json:"isAdmin"`
	IsQAAuditor bool    `gorm:"not null;default:false"            json:"isQaAuditor"`
	Active      bool    `gorm:"not null;default:true"             json:"active"`
}

func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
