package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"renovision/config"
	"renovision/models"
	"renovision/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Website  string `json:"website" validate:"omitempty,max=200"`
	Trade    string `json:"trade" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponse struct {
	Success      bool            `json:"success"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Company      *models.Company `json:"company"`
}

// Register creates a new company account with a 14 day trial.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	email := strings.ToLower(req.Email)

	// Check if company already exists
	var existing models.Company
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Email already registered", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}

	company := models.Company{
		ID:             uuid.NewString(),
		APIKey:         "rvk_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Email:          email,
		PasswordHash:   string(hashedPassword),
		Name:           req.Name,
		Phone:          req.Phone,
		Website:        req.Website,
		Trade:          req.Trade,
		CommissionRate: models.DefaultCommissionRate,
		Status:         models.CompanyStatusTrial,
		TrialEndsAt:    utils.Pointer(time.Now().AddDate(0, 0, 14)),
	}

	if err := config.DB.Create(&company).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create company", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&company)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate tokens", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Company:      &company,
	})
}

// Login authenticates a company against its stored bcrypt hash.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var company models.Company
	if err := config.DB.Where("email = ?", strings.ToLower(req.Email)).First(&company).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(req.Password)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
	}

	if company.Status == models.CompanyStatusPaused {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Account is paused", nil)
	}

	accessToken, refreshToken, err := utils.GenerateJWTToken(&company)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate tokens", nil)
	}

	return c.JSON(AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Company:      &company,
	})
}

func RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	accessToken, refreshToken, err := utils.RefreshTokens(req.RefreshToken)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", nil)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// GetCurrentCompany returns the authenticated company's profile.
func GetCurrentCompany(c *fiber.Ctx) error {
	company := c.Locals("company").(*models.Company)
	return c.JSON(fiber.Map{
		"success": true,
		"company": company,
	})
}
