package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/service"
)

type GiftFinderHandler struct {
	svc *service.GiftFinderService
}

func NewGiftFinderHandler(svc *service.GiftFinderService) *GiftFinderHandler {
	return &GiftFinderHandler{svc: svc}
}

// Health godoc
// GET /health
func (h *GiftFinderHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "gift-finder-service",
	})
}

// GenerateBundles godoc
// POST /api/v1/gift-bundles
func (h *GiftFinderHandler) GenerateBundles(c fiber.Ctx) error {
	var req models.GiftFinderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.svc.GenerateBundles(c.Context(), req)
	if err != nil {
		slog.Warn("rejected gift bundle request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// GetRules godoc
// GET /api/v1/rules
func (h *GiftFinderHandler) GetRules(c fiber.Ctx) error {
	rules, err := h.svc.GetRules(c.Context())
	if err != nil {
		slog.Error("failed to fetch rules", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch scoring rules",
		})
	}

	return c.JSON(fiber.Map{
		"rules": rules,
	})
}
