package models

import (
	"time"
)

type ExchangeProgram struct {
	ID                   int        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name                 string     `gorm:"size:200;not null" json:"name"`
	Description          string     `gorm:"type:text" json:"description"`
	LimitApplicationDate *time.Time `json:"limit_application_date,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	FinishDate           *time.Time `json:"finish_date,omitempty"`
	ApplicationDocuments string     `gorm:"type:text" json:"application_documents"`
	RequiredDocuments    string     `gorm:"type:text" json:"required_documents"`
	ImagesURL            string     `gorm:"size:500" json:"images_url"`
	OrganizationID       int        `gorm:"not null;index" json:"organization_id"`
	CountryID            int        `json:"country_id"`
	StateID              int        `json:"state_id"`
	StatusID             Status     `gorm:"not null;index" json:"status_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (ExchangeProgram) TableName() string {
	return "exchange_programs"
}
