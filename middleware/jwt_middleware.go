package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"renovision/config"
	"renovision/models"
	"renovision/utils"
)

// Protected authenticates dashboard requests and loads the company into the
// request locals.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Try to get token from Authorization header first
		var token string
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid authorization format",
				})
			}
			token = tokenParts[1]
		} else {
			// Fall back to cookie if header not present
			token = c.Cookies("access_token")
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authorization required",
				})
			}
		}

		claims, err := utils.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Refresh tokens are only good for /api/auth/refresh
		if claims.TokenType != utils.TokenTypeAccess {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token type",
			})
		}

		var company models.Company
		if err := config.DB.First(&company, "id = ?", claims.CompanyID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Company not found",
			})
		}

		if company.Status == models.CompanyStatusPaused {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Account is paused",
			})
		}

		c.Locals("company", &company)
		c.Locals("companyID", company.ID)

		return c.Next()
	}
}

// RequireCompanyParam ensures the authenticated company matches the
// :companyId path parameter, so one tenant's token cannot read another's
// leads.
func RequireCompanyParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		company := c.Locals("company").(*models.Company)
		if c.Params("companyId") != company.ID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You do not have access to this company",
			})
		}
		return c.Next()
	}
}
