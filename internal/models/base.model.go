package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseUUIDModel struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime"              json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"              json:"updatedAt"`
}

// BeforeCreate mints the primary key. Create-only: a BeforeSave hook
// would also run on updates, where GORM applies it to the empty Model
// receiver and the minted ID would join the WHERE clause.
func (b *BaseUUIDModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		uuidString, _ := uuid.NewV7()
		b.ID = uuidString.String()
	}
	return nil
}

// VersionedModel adds the optimistic-lock column. Every edit form posts
// the version it read; updates compare-and-swap on it.
type VersionedModel struct {
	Version int `gorm:"not null;default:0" json:"version"`
}

// Boolean-ish enum used across the domain where forms offer yes/no/unknown.
const (
	BoolYes     = "yes"
	BoolNo      = "no"
	BoolUnknown = "unknown"
)
