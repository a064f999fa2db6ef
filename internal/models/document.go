package models

import (
	"time"
)

// ApplicationDocument ids are unique per application; application and
// required documents share the numbering.
type ApplicationDocument struct {
	ApplicationID int          `gorm:"primaryKey;autoIncrement:false" json:"application_id"`
	ID            int          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	DocumentType  DocumentType `gorm:"not null;index" json:"document_type"`
	Category      string       `gorm:"size:100" json:"category"`
	URL           string       `gorm:"size:500" json:"url"`
	StatusID      Status       `gorm:"not null" json:"status_id"`
	Reason        string       `gorm:"type:text" json:"reason,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (ApplicationDocument) TableName() string {
	return "application_documents"
}
