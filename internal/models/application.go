package models

import (
	"time"
)

// Application is a student's request to join an exchange program. Its ID is
// allocated by the application layer, never by the database.
type Application struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProgramID int       `gorm:"not null;index" json:"program_id"`
	StudentID int       `gorm:"not null;index" json:"student_id"`
	Reason    string    `gorm:"type:text" json:"reason"`
	StatusID  Status    `gorm:"not null;index" json:"status_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Documents []ApplicationDocument `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// DocumentsOfType returns the documents of one list, in stored order.
func (a Application) DocumentsOfType(t DocumentType) []ApplicationDocument {
	var out []ApplicationDocument
	for _, d := range a.Documents {
		if d.DocumentType == t {
			out = append(out, d)
		}
	}
	return out
}

// MaxDocumentID is the highest document id in use, 0 when there are none.
func (a Application) MaxDocumentID() int {
	highest := 0
	for _, d := range a.Documents {
		if d.ID > highest {
			highest = d.ID
		}
	}
	return highest
}
