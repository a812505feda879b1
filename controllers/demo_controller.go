package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"renovision/config"
	"renovision/models"
	"renovision/utils"
)

const demoCompanyID = "demo_company"

// CreateDemoCompany seeds the fixed demo tenant used by the landing page
// widget. Idempotent: repeated calls return the existing company.
func CreateDemoCompany(c *fiber.Ctx) error {
	var existing models.Company
	err := config.DB.First(&existing, "id = ?", demoCompanyID).Error
	if err == nil {
		return c.JSON(utils.SuccessResponse(existing))
	}
	if err != gorm.ErrRecordNotFound {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up demo company", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	company := models.Company{
		ID:             demoCompanyID,
		APIKey:         "rvk_demo",
		Email:          "demo@renovision.app",
		PasswordHash:   string(hashed),
		Name:           "Demo Renovations Ltd",
		Phone:          "07700000001",
		Website:        "https://demo.renovision.app",
		Trade:          "kitchens",
		CommissionRate: models.DefaultCommissionRate,
		Status:         models.CompanyStatusTrial,
		TrialEndsAt:    utils.Pointer(time.Now().AddDate(0, 0, 14)),
	}

	if err := config.DB.Create(&company).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create demo company", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(company))
}
