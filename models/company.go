package models

import (
	"time"

	"gorm.io/gorm"
)

// Company statuses
const (
	CompanyStatusTrial  = "trial"
	CompanyStatusActive = "active"
	CompanyStatusPaused = "paused"
)

// DefaultCommissionRate is applied when a company has no rate configured
const DefaultCommissionRate = 0.02

// Company represents a contractor business embedding the widget
type Company struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	APIKey string `gorm:"uniqueIndex;not null" json:"api_key"`

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name    string `gorm:"not null" json:"name"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Trade   string `json:"trade"` // kitchens, bathrooms, extensions, etc.

	// Billing
	CommissionRate float64 `gorm:"default:0.02" json:"commission_rate"` // fraction of won revenue

	// Account status
	Status      string     `gorm:"default:'trial'" json:"status"` // trial, active, paused
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Leads    []Lead    `gorm:"foreignKey:CompanyID" json:"leads,omitempty"`
	Projects []Project `gorm:"foreignKey:CompanyID" json:"projects,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:CompanyID" json:"invoices,omitempty"`
}

// EffectiveCommissionRate returns the configured rate or the platform default
func (c *Company) EffectiveCommissionRate() float64 {
	if c.CommissionRate <= 0 || c.CommissionRate > 1 {
		return DefaultCommissionRate
	}
	return c.CommissionRate
}
