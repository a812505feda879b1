package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQuoted    = "quoted"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
	LeadStatusClosed    = "closed"
)

// LeadStatuses is the set of values the update endpoint accepts
var LeadStatuses = []string{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQuoted,
	LeadStatusWon,
	LeadStatusLost,
	LeadStatusClosed,
}

// IsValidLeadStatus reports whether s is one of the known lead statuses
func IsValidLeadStatus(s string) bool {
	for _, v := range LeadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Lead represents a single captured homeowner inquiry
type Lead struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CompanyID string `gorm:"not null;index;size:36" json:"company_id"`

	// Contact details from the widget form
	CustomerName string `gorm:"not null" json:"customer_name"`
	Email        string `gorm:"not null;index" json:"email"`
	Phone        string `gorm:"not null" json:"phone"`
	Postcode     string `json:"postcode"`

	// Project details
	ProjectBudget string `json:"project_budget"` // budget bucket, e.g. "10k-25k"
	StartDate     string `json:"start_date"`     // desired start window
	Notes         string `json:"notes"`

	// Image pipeline artefacts
	OriginalImage  string `json:"original_image"`
	GeneratedImage string `json:"generated_image"`
	Prompt         string `json:"prompt"`

	// ReferenceCode is derived from the id at creation and never changes
	ReferenceCode string `gorm:"uniqueIndex;not null" json:"reference_code"`

	// Pipeline state
	Status       string     `gorm:"default:'new';index" json:"status"`
	ProjectValue *float64   `json:"project_value,omitempty"`
	WonDate      *time.Time `json:"won_date,omitempty"`

	// Follow-up flags are monotonic: once set they are never cleared
	FollowUp1Sent bool `gorm:"default:false" json:"follow_up_1_sent"`
	FollowUp2Sent bool `gorm:"default:false" json:"follow_up_2_sent"`
	FollowUp3Sent bool `gorm:"default:false" json:"follow_up_3_sent"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Company Company `json:"-"`
}

// Age returns how long the lead has existed relative to now
func (l *Lead) Age(now time.Time) time.Duration {
	return now.Sub(l.CreatedAt)
}
