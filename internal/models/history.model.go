package models

const (
	EventHistoryCreate = "create"
	EventHistoryUpdate = "update"
)

// EventHistory is the append-only audit log of entity writes. Diff holds
// a JSON object mapping changed field to old and new values; rows are
// never updated or deleted.
type EventHistory struct {
	BaseUUIDModel

	CaseID      *string `gorm:"type:varchar(64);index"          json:"caseId"`
	CreatedByID string  `gorm:"type:varchar(64);not null"       json:"createdById"`
	ContentType string  `gorm:"type:varchar(64);not null;index:idx_event_history_target" json:"contentType"`
	ObjectID    string  `gorm:"type:varchar(64);not null;index:idx_event_history_target" json:"objectId"`
	EventType   string  `gorm:"type:varchar(10);not null"       json:"eventType"`
	Diff        string  `gorm:"type:text"                       json:"diff"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
}
