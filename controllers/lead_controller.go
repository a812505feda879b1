package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"renovision/models"
	"renovision/utils"
)

type LeadController struct {
	DB     *gorm.DB
	Mailer *utils.Mailer
	Hub    *LeadHub
	Logger *log.Logger
}

func NewLeadController(db *gorm.DB, mailer *utils.Mailer, hub *LeadHub, logger *log.Logger) *LeadController {
	return &LeadController{
		DB:     db,
		Mailer: mailer,
		Hub:    hub,
		Logger: logger,
	}
}

type CaptureLeadRequest struct {
	CompanyID    string `json:"companyId" validate:"required"`
	CustomerName string `json:"customerName" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,max=20"`

	Postcode       string `json:"postcode" validate:"omitempty,max=10"`
	ProjectBudget  string `json:"projectBudget" validate:"omitempty,max=50"`
	StartDate      string `json:"startDate" validate:"omitempty,max=50"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
	OriginalImage  string `json:"originalImage"`
	GeneratedImage string `json:"generatedImage"`
	Prompt         string `json:"prompt"`
}

type UpdateLeadRequest struct {
	Status       *string  `json:"status" validate:"omitempty,oneof=new contacted quoted won lost closed"`
	ProjectValue *float64 `json:"projectValue" validate:"omitempty,min=0"`
}

// buildLeadUpdates computes the column set for a partial lead update.
// Only fields present in the request are touched; moving to "won" stamps
// the won date once.
func buildLeadUpdates(lead *models.Lead, req UpdateLeadRequest, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"updated_at": now,
	}

	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == models.LeadStatusWon && lead.WonDate == nil {
			updates["won_date"] = now
		}
	}
	if req.ProjectValue != nil {
		updates["project_value"] = *req.ProjectValue
	}

	return updates
}

// CaptureLead handles a widget submission: persists the lead and fires the
// confirmation and company-alert emails best-effort.
func (lc *LeadController) CaptureLead(c *fiber.Ctx) error {
	var req CaptureLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	// A lead must reference an existing company
	var company models.Company
	if err := lc.DB.First(&company, "id = ?", req.CompanyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up company", nil)
	}

	leadID := uuid.NewString()
	lead := models.Lead{
		ID:             leadID,
		CompanyID:      company.ID,
		CustomerName:   req.CustomerName,
		Email:          req.Email,
		Phone:          req.Phone,
		Postcode:       req.Postcode,
		ProjectBudget:  req.ProjectBudget,
		StartDate:      req.StartDate,
		Notes:          req.Notes,
		OriginalImage:  req.OriginalImage,
		GeneratedImage: req.GeneratedImage,
		Prompt:         req.Prompt,
		ReferenceCode:  utils.ReferenceCode(leadID),
		Status:         models.LeadStatusNew,
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create lead", nil)
	}

	// Notifications are best-effort: capture succeeds even if they fail
	go func() {
		if err := lc.Mailer.SendCustomerConfirmation(&lead, &company); err != nil {
			lc.Logger.Printf("Failed to send customer confirmation for lead %s: %v", lead.ID, err)
		}
		if err := lc.Mailer.SendCompanyAlert(&lead, &company); err != nil {
			lc.Logger.Printf("Failed to send company alert for lead %s: %v", lead.ID, err)
		}
	}()

	lc.Hub.Broadcast(&lead)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"leadId":        lead.ID,
		"referenceCode": lead.ReferenceCode,
	})
}

// GetLeads lists a company's leads newest-first with an optional status
// filter.
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	companyID := c.Params("companyId")
	status := c.Query("status")

	query := lc.DB.Where("company_id = ?", companyID)
	if status != "" {
		if !models.IsValidLeadStatus(status) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown status filter", nil)
		}
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Order("created_at DESC").Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"leads":   leads,
		"total":   len(leads),
	})
}

// UpdateLead applies a partial update (status and/or project value). When
// the status becomes "won" the won date is stamped.
func (lc *LeadController) UpdateLead(c *fiber.Ctx) error {
	company := c.Locals("company").(*models.Company)
	leadID := c.Params("leadId")

	var req UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	if err := lc.DB.Where("id = ? AND company_id = ?", leadID, company.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", nil)
	}

	updates := buildLeadUpdates(&lead, req, time.Now())

	if err := lc.DB.Model(&lead).Updates(updates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", nil)
	}

	if err := lc.DB.First(&lead, "id = ?", lead.ID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload lead", nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"lead":    lead,
	})
}
