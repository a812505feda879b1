package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"renovision/models"
	"renovision/utils"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, models.DefaultCommissionRate)

	assert.Equal(t, 0, stats.TotalLeads)
	assert.Equal(t, 0, stats.WonLeads)
	assert.Equal(t, 0.0, stats.ConversionRate)
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, 0.0, stats.Commission)
	assert.Equal(t, 0.0, stats.AvgProjectValue)
}

func TestComputeStatsRevenueAndCommission(t *testing.T) {
	leads := []models.Lead{
		{Status: models.LeadStatusWon, ProjectValue: utils.Pointer(15000.0)},
		{Status: models.LeadStatusWon, ProjectValue: utils.Pointer(5000.0)},
		{Status: models.LeadStatusNew},
		{Status: models.LeadStatusContacted},
	}

	stats := ComputeStats(leads, 0.05)

	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 2, stats.WonLeads)
	assert.Equal(t, 20000.0, stats.TotalRevenue)
	assert.Equal(t, 1000.0, stats.Commission)
	assert.Equal(t, 50.0, stats.ConversionRate)
	assert.Equal(t, 10000.0, stats.AvgProjectValue)
}

func TestComputeStatsStatusCounts(t *testing.T) {
	leads := []models.Lead{
		{Status: models.LeadStatusNew},
		{Status: models.LeadStatusNew},
		{Status: models.LeadStatusQuoted},
		{Status: models.LeadStatusLost},
		{Status: models.LeadStatusClosed},
	}

	stats := ComputeStats(leads, models.DefaultCommissionRate)

	assert.Equal(t, 2, stats.StatusCounts[models.LeadStatusNew])
	assert.Equal(t, 1, stats.StatusCounts[models.LeadStatusQuoted])
	assert.Equal(t, 1, stats.StatusCounts[models.LeadStatusLost])
	assert.Equal(t, 1, stats.StatusCounts[models.LeadStatusClosed])
	assert.Equal(t, 0, stats.WonLeads)
	assert.Equal(t, 0.0, stats.ConversionRate)
}

func TestComputeStatsConversionRateRounding(t *testing.T) {
	// 1 won out of 3 leads = 33.333...% -> 33.3
	leads := []models.Lead{
		{Status: models.LeadStatusWon, ProjectValue: utils.Pointer(1000.0)},
		{Status: models.LeadStatusNew},
		{Status: models.LeadStatusNew},
	}

	stats := ComputeStats(leads, models.DefaultCommissionRate)
	assert.Equal(t, 33.3, stats.ConversionRate)
}

func TestComputeStatsWonWithoutValue(t *testing.T) {
	leads := []models.Lead{
		{Status: models.LeadStatusWon},
	}

	stats := ComputeStats(leads, models.DefaultCommissionRate)
	assert.Equal(t, 1, stats.WonLeads)
	assert.Equal(t, 0.0, stats.TotalRevenue)
	assert.Equal(t, 100.0, stats.ConversionRate)
	assert.Equal(t, 0.0, stats.AvgProjectValue)
}
