package models

import (
	"time"

	"gorm.io/gorm"
)

// Project tracks a won lead through delivery. Present in the schema for the
// dashboard roadmap; the core lifecycle does not mutate it.
type Project struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CompanyID string `gorm:"not null;index;size:36" json:"company_id"`
	LeadID    string `gorm:"index;size:36" json:"lead_id"`

	Title       string     `json:"title"`
	Value       float64    `json:"value"`
	Status      string     `gorm:"default:'pending'" json:"status"` // pending, in_progress, completed
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Invoice records a commission charge against a company. Schema-only for
// now; invoicing has no endpoints.
type Invoice struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CompanyID string `gorm:"not null;index;size:36" json:"company_id"`
	ProjectID string `gorm:"index;size:36" json:"project_id"`

	Amount   float64    `json:"amount"` // in pounds
	Currency string     `gorm:"default:'GBP'" json:"currency"`
	Status   string     `gorm:"default:'draft'" json:"status"` // draft, sent, paid
	DueAt    *time.Time `json:"due_at,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
