package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/models"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/repository"
	"github.com/Pranav1378/ShopifyHackathonGiftFinder/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// SaveProfile godoc
// POST /api/v1/profiles
func (h *ProfileHandler) SaveProfile(c fiber.Ctx) error {
	var req models.SaveProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Label) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "label is required",
		})
	}

	stored, err := h.svc.Save(c.Context(), req.Label, req.Profile)
	if err != nil {
		slog.Error("failed to save profile", "label", req.Label, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(stored)
}

// UpdateProfile godoc
// PUT /api/v1/profiles/:id
func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile ID",
		})
	}

	var req models.SaveProfileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Label) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "label is required",
		})
	}

	stored, err := h.svc.Update(c.Context(), id, req.Label, req.Profile)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "profile not found",
		})
	}
	if err != nil {
		slog.Error("failed to update profile", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update profile",
		})
	}

	return c.JSON(stored)
}

// GetProfile godoc
// GET /api/v1/profiles/:id
func (h *ProfileHandler) GetProfile(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile ID",
		})
	}

	stored, err := h.svc.Get(c.Context(), id)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "profile not found",
		})
	}
	if err != nil {
		slog.Error("failed to fetch profile", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch profile",
		})
	}

	return c.JSON(stored)
}

// ListProfiles godoc
// GET /api/v1/profiles
func (h *ProfileHandler) ListProfiles(c fiber.Ctx) error {
	profiles, err := h.svc.List(c.Context())
	if err != nil {
		slog.Error("failed to list profiles", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to list profiles",
		})
	}

	return c.JSON(fiber.Map{
		"profiles": profiles,
	})
}

// DeleteProfile godoc
// DELETE /api/v1/profiles/:id
func (h *ProfileHandler) DeleteProfile(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid profile ID",
		})
	}

	err := h.svc.Delete(c.Context(), id)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "profile not found",
		})
	}
	if err != nil {
		slog.Error("failed to delete profile", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete profile",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
