package controller

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"renovision/config"
	"renovision/utils"
)

// allowed upload types; the widget only produces photos
var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type GenerationController struct {
	Transformer utils.ImageTransformer
	UploadDir   string
	Logger      *logrus.Logger
}

func NewGenerationController(transformer utils.ImageTransformer, uploadDir string) *GenerationController {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &GenerationController{
		Transformer: transformer,
		UploadDir:   uploadDir,
		Logger:      logger,
	}
}

type GenerateRequest struct {
	Filename string `json:"filename" validate:"required"`
	Prompt   string `json:"prompt" validate:"required,max=2000"`
}

// UploadImage stores a widget photo and returns the stored filename.
func (gc *GenerationController) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "image file is required", nil)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unsupported image type", nil)
	}

	if err := os.MkdirAll(gc.UploadDir, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", nil)
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(gc.UploadDir, filename)); err != nil {
		gc.Logger.WithError(err).Error("failed to save uploaded image")
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save image", nil)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"filename": filename,
	})
}

// GenerateImage runs the configured provider on an uploaded photo and
// returns the URL of the generated "after" image. Provider failures are
// surfaced to the caller with detail, unlike email sends.
func (gc *GenerationController) GenerateImage(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	// Never let a crafted filename escape the upload dir
	filename := filepath.Base(req.Filename)
	ext := strings.ToLower(filepath.Ext(filename))
	mimeType, ok := allowedImageExts[ext]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "unsupported image type", nil)
	}

	image, err := os.ReadFile(filepath.Join(gc.UploadDir, filename))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "uploaded image not found", nil)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Minute)
	defer cancel()

	gc.Logger.WithFields(logrus.Fields{
		"provider": gc.Transformer.Name(),
		"filename": filename,
	}).Info("starting image generation")

	generated, err := gc.Transformer.Transform(ctx, image, mimeType, req.Prompt)
	if err != nil {
		gc.Logger.WithError(err).WithField("provider", gc.Transformer.Name()).Error("image generation failed")
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("provider", gc.Transformer.Name())
			scope.SetExtra("filename", filename)
			sentry.CaptureException(err)
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Image generation failed", err)
	}

	outName := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(gc.UploadDir, outName), generated, 0o644); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to store generated image", nil)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"generatedImage": fmt.Sprintf("%s/uploads/%s", config.AppConfig.AppURL, outName),
	})
}
