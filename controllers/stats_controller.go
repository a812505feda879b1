package controller

import (
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"renovision/models"
	"renovision/utils"
)

type StatsController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewStatsController(db *gorm.DB, logger *log.Logger) *StatsController {
	return &StatsController{
		DB:     db,
		Logger: logger,
	}
}

// CompanyStats is the dashboard metrics payload, recomputed per request.
type CompanyStats struct {
	TotalLeads      int            `json:"total_leads"`
	StatusCounts    map[string]int `json:"status_counts"`
	WonLeads        int            `json:"won_leads"`
	TotalRevenue    float64        `json:"total_revenue"`
	Commission      float64        `json:"commission"`
	ConversionRate  float64        `json:"conversion_rate"`   // percent, one decimal
	AvgProjectValue float64        `json:"avg_project_value"` // across won leads
}

// ComputeStats derives the dashboard metrics from a lead set. Pure function
// so the maths is testable without a database.
func ComputeStats(leads []models.Lead, commissionRate float64) CompanyStats {
	stats := CompanyStats{
		StatusCounts: make(map[string]int),
	}

	for _, lead := range leads {
		stats.TotalLeads++
		stats.StatusCounts[lead.Status]++

		if lead.Status == models.LeadStatusWon {
			stats.WonLeads++
			if lead.ProjectValue != nil {
				stats.TotalRevenue += *lead.ProjectValue
			}
		}
	}

	stats.Commission = stats.TotalRevenue * commissionRate

	if stats.TotalLeads > 0 {
		rate := float64(stats.WonLeads) / float64(stats.TotalLeads) * 100
		stats.ConversionRate = math.Round(rate*10) / 10
	}
	if stats.WonLeads > 0 {
		stats.AvgProjectValue = stats.TotalRevenue / float64(stats.WonLeads)
	}

	return stats
}

// GetCompanyStats returns the company's metrics, optionally restricted to a
// calendar month (?month=YYYY-MM, bucketed by creation date).
func (sc *StatsController) GetCompanyStats(c *fiber.Ctx) error {
	company := c.Locals("company").(*models.Company)

	query := sc.DB.Where("company_id = ?", company.ID)

	if month := c.Query("month"); month != "" {
		start, err := time.ParseInLocation("2006-01", month, time.Local)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid month filter, want YYYY-MM", nil)
		}
		query = query.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 1, 0))
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", nil)
	}

	stats := ComputeStats(leads, company.EffectiveCommissionRate())

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
