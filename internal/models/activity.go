package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityType string

const (
	ActivityApplicationPublished ActivityType = "application_published"
	ActivityApplicationUpdated   ActivityType = "application_updated"
	ActivityApplicationCancelled ActivityType = "application_cancelled"
	ActivityApplicationClosed    ActivityType = "application_closed"
	ActivityProgramPublished     ActivityType = "program_published"
	ActivityProgramUpdated       ActivityType = "program_updated"
	ActivityProgramClosed        ActivityType = "program_closed"
	ActivityDocumentDeleted      ActivityType = "document_deleted"
)

type Activity struct {
	ID            uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	UserID        int          `gorm:"not null;index" json:"user_id"`
	ActivityType  ActivityType `gorm:"type:varchar(50);not null;index" json:"activity_type"`
	ApplicationID *int         `gorm:"index" json:"application_id,omitempty"`
	ProgramID     *int         `gorm:"index" json:"program_id,omitempty"`
	Metadata      string       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time    `gorm:"index" json:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}
