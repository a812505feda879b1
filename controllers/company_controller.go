package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"renovision/config"
	"renovision/models"
	"renovision/utils"
)

type CompanyController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCompanyController(db *gorm.DB, logger *log.Logger) *CompanyController {
	return &CompanyController{
		DB:     db,
		Logger: logger,
	}
}

// GetCompany returns a company profile.
func (cc *CompanyController) GetCompany(c *fiber.Ctx) error {
	companyID := c.Params("companyId")

	var company models.Company
	if err := cc.DB.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch company", nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"company": company,
	})
}

// GetEmbedCode returns the widget snippet a company pastes into its site.
func (cc *CompanyController) GetEmbedCode(c *fiber.Ctx) error {
	companyID := c.Params("companyId")

	var company models.Company
	if err := cc.DB.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch company", nil)
	}

	embedCode := fmt.Sprintf(
		`<script src="%s/widget.js" data-company-id="%s" data-api-key="%s" async></script>`,
		config.AppConfig.AppURL, company.ID, company.APIKey,
	)

	return c.JSON(fiber.Map{
		"success":   true,
		"embedCode": embedCode,
	})
}
