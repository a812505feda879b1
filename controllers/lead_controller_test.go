package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"renovision/models"
	"renovision/utils"
)

func TestBuildLeadUpdatesStampsWonDate(t *testing.T) {
	now := time.Now()
	lead := models.Lead{Status: models.LeadStatusQuoted}

	updates := buildLeadUpdates(&lead, UpdateLeadRequest{
		Status:       utils.Pointer(models.LeadStatusWon),
		ProjectValue: utils.Pointer(18500.0),
	}, now)

	assert.Equal(t, models.LeadStatusWon, updates["status"])
	assert.Equal(t, now, updates["won_date"])
	assert.Equal(t, 18500.0, updates["project_value"])
}

func TestBuildLeadUpdatesKeepsExistingWonDate(t *testing.T) {
	firstWon := time.Now().Add(-48 * time.Hour)
	lead := models.Lead{Status: models.LeadStatusWon, WonDate: &firstWon}

	// Re-saving a won lead must not move the original won date
	updates := buildLeadUpdates(&lead, UpdateLeadRequest{
		Status: utils.Pointer(models.LeadStatusWon),
	}, time.Now())

	assert.NotContains(t, updates, "won_date")
}

func TestBuildLeadUpdatesNonWonStatus(t *testing.T) {
	lead := models.Lead{Status: models.LeadStatusNew}

	updates := buildLeadUpdates(&lead, UpdateLeadRequest{
		Status: utils.Pointer(models.LeadStatusContacted),
	}, time.Now())

	assert.Equal(t, models.LeadStatusContacted, updates["status"])
	assert.NotContains(t, updates, "won_date")
	assert.NotContains(t, updates, "project_value")
}

func TestBuildLeadUpdatesEmptyRequest(t *testing.T) {
	lead := models.Lead{Status: models.LeadStatusNew}

	updates := buildLeadUpdates(&lead, UpdateLeadRequest{}, time.Now())

	assert.Len(t, updates, 1)
	assert.Contains(t, updates, "updated_at")
}

// testDB opens the database named by TEST_DATABASE_URL, skipping the test
// when it is not set.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Company{}, &models.Lead{}))
	return db
}

func TestCaptureLeadUnknownCompany(t *testing.T) {
	db := testDB(t)

	lc := NewLeadController(db, nil, NewLeadHub(), log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Post("/api/lead", lc.CaptureLead)

	body, _ := json.Marshal(fiber.Map{
		"companyId":    uuid.NewString(),
		"customerName": "Jordan Homeowner",
		"email":        "jordan@example.test",
		"phone":        "07700900000",
	})
	req := httptest.NewRequest("POST", "/api/lead", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Nothing was persisted
	var count int64
	require.NoError(t, db.Model(&models.Lead{}).Where("email = ?", "jordan@example.test").Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateLeadRejectsUnknownStatus(t *testing.T) {
	lc := NewLeadController(nil, nil, NewLeadHub(), log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Put("/api/lead/:leadId", func(c *fiber.Ctx) error {
		c.Locals("company", &models.Company{ID: "c-1"})
		return lc.UpdateLead(c)
	})

	body, _ := json.Marshal(fiber.Map{"status": "archived"})
	req := httptest.NewRequest("PUT", "/api/lead/l-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	// Validation rejects the body before any database access
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
