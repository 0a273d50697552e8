package grouproles

import (
	"errors"
	"strconv"

	"rank-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for group role administration.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetupRequest is the body of the setup endpoint.
type SetupRequest struct {
	GroupID int64 `json:"group_id"`
}

// EnabledRequest is the body of the enable endpoint.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// MapRequest is the body of the map endpoint.
type MapRequest struct {
	RoleID string `json:"role_id"`
}

// FallbackRequest is the body of the fallback endpoint.
type FallbackRequest struct {
	Name string `json:"name"`
}

// RegisterRoutes registers the grouproles routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/grouproles/:guild")
	group.Get("/", h.HandleView)
	group.Post("/setup", h.HandleSetup)
	group.Put("/enabled", h.HandleSetEnabled)
	group.Put("/fallback", h.HandleSetFallback)
	group.Put("/ranks/:rank", h.HandleMapRank)
	group.Delete("/ranks/:rank", h.HandleUnmapRank)
}

// HandleView returns the guild's group configuration.
// @Summary View Group Roles
// @Description Shows the linked group, integration status, rank mappings and the group's available ranks.
// @Tags grouproles
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {object} grouproles.View
// @Failure 404 {object} map[string]string "Group not found"
// @Failure 409 {object} map[string]string "No group set up"
// @Router /grouproles/{guild} [get]
func (h *Handler) HandleView(c *fiber.Ctx) error {
	view, err := h.service.View(c.Context(), c.Params("guild"))
	if err != nil {
		return h.fail(c, "View group roles failed", err)
	}
	return c.JSON(view)
}

// HandleSetup links the guild to a group.
// @Summary Set Up Group
// @Description Validates the group against its rank list and links it to the guild.
// @Tags grouproles
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Param body body grouproles.SetupRequest true "Group"
// @Success 200 {object} map[string]interface{} "Available ranks"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Group not found"
// @Router /grouproles/{guild}/setup [post]
func (h *Handler) HandleSetup(c *fiber.Ctx) error {
	var req SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ranks, err := h.service.Setup(c.Context(), c.Params("guild"), req.GroupID)
	if err != nil {
		return h.fail(c, "Group setup failed", err)
	}
	return c.JSON(fiber.Map{"group_id": req.GroupID, "available_ranks": ranks})
}

// HandleSetEnabled toggles group integration.
// @Summary Enable Group Integration
// @Tags grouproles
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Param body body grouproles.EnabledRequest true "Enabled"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "No group set up"
// @Router /grouproles/{guild}/enabled [put]
func (h *Handler) HandleSetEnabled(c *fiber.Ctx) error {
	var req EnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.SetEnabled(c.Context(), c.Params("guild"), req.Enabled); err != nil {
		return h.fail(c, "Toggle group integration failed", err)
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}

// HandleSetFallback sets the fallback role name.
// @Summary Set Fallback Role
// @Description Sets the name of the role given to members without a group role. Empty restores the default.
// @Tags grouproles
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Param body body grouproles.FallbackRequest true "Role name"
// @Success 200 {object} map[string]interface{}
// @Router /grouproles/{guild}/fallback [put]
func (h *Handler) HandleSetFallback(c *fiber.Ctx) error {
	var req FallbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.service.SetFallbackRole(c.Context(), c.Params("guild"), req.Name); err != nil {
		return h.fail(c, "Set fallback role failed", err)
	}
	return c.JSON(fiber.Map{"fallback_role_name": req.Name})
}

// HandleMapRank maps a rank to a role.
// @Summary Map Rank
// @Tags grouproles
// @Accept json
// @Produce json
// @Param guild path string true "Guild ID"
// @Param rank path int true "Rank number (0-255)"
// @Param body body grouproles.MapRequest true "Role"
// @Success 200 {object} grouproles.MappingView
// @Failure 404 {object} map[string]string "Rank or role not found"
// @Router /grouproles/{guild}/ranks/{rank} [put]
func (h *Handler) HandleMapRank(c *fiber.Ctx) error {
	rankID, err := strconv.Atoi(c.Params("rank"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rank must be a number"})
	}
	var req MapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	view, err := h.service.MapRank(c.Context(), c.Params("guild"), rankID, req.RoleID)
	if err != nil {
		return h.fail(c, "Map rank failed", err)
	}
	return c.JSON(view)
}

// HandleUnmapRank removes a rank mapping.
// @Summary Unmap Rank
// @Tags grouproles
// @Produce json
// @Param guild path string true "Guild ID"
// @Param rank path int true "Rank number (0-255)"
// @Success 204
// @Failure 404 {object} map[string]string "Rank not mapped"
// @Router /grouproles/{guild}/ranks/{rank} [delete]
func (h *Handler) HandleUnmapRank(c *fiber.Ctx) error {
	rankID, err := strconv.Atoi(c.Params("rank"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rank must be a number"})
	}

	if err := h.service.UnmapRank(c.Context(), c.Params("guild"), rankID); err != nil {
		return h.fail(c, "Unmap rank failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrRankNotFound),
		errors.Is(err, ErrNotMapped), errors.Is(err, ErrRoleNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrNoGroup):
		status = fiber.StatusConflict
	}

	l := logger.WithRayID(h.service.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Info(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
