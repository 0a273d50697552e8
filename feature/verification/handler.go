package verification

import (
	"errors"

	"rank-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for verification.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// StartRequest is the body of the start endpoint.
type StartRequest struct {
	MemberID string `json:"member_id"`
	Username string `json:"username"`
}

// ConfirmRequest is the body of the confirm endpoint.
type ConfirmRequest struct {
	GuildID  string `json:"guild_id"`
	MemberID string `json:"member_id"`
}

// RegisterRoutes registers the verification routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/verification")
	group.Post("/start", h.HandleStart)
	group.Post("/confirm", h.HandleConfirm)
	group.Get("/:member", h.HandleStatus)
}

// HandleStart issues a verification code.
// @Summary Start Verification
// @Description Resolves the Roblox username and issues an 8 character code to put in the profile description.
// @Tags verification
// @Accept json
// @Produce json
// @Param body body verification.StartRequest true "Member and Roblox username"
// @Success 200 {object} verification.PendingVerification
// @Failure 404 {object} map[string]string "Roblox user not found"
// @Failure 409 {object} map[string]string "Already verified"
// @Router /verification/start [post]
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	pending, err := h.service.Start(c.Context(), req.MemberID, req.Username)
	if err != nil {
		return h.fail(c, "Verification start failed", err)
	}
	return c.JSON(pending)
}

// HandleConfirm checks the code and commits the identity.
// @Summary Confirm Verification
// @Description Checks the profile description for the issued code, stores the identity and syncs the member's roles in the guild.
// @Tags verification
// @Accept json
// @Produce json
// @Param body body verification.ConfirmRequest true "Guild and member"
// @Success 200 {object} verification.ConfirmResult
// @Failure 404 {object} map[string]string "No pending verification"
// @Failure 422 {object} map[string]string "Code not in profile"
// @Router /verification/confirm [post]
func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.service.Confirm(c.Context(), req.GuildID, req.MemberID)
	if err != nil {
		return h.fail(c, "Verification confirm failed", err)
	}
	if result.SyncNote != "" {
		logger.WithRayID(h.service.logger, c).Warn("Role sync after verification incomplete",
			zap.String("member_id", req.MemberID),
			zap.String("note", result.SyncNote),
		)
	}
	return c.JSON(result)
}

// HandleStatus returns a member's verification state.
// @Summary Verification Status
// @Tags verification
// @Produce json
// @Param member path string true "Member ID"
// @Success 200 {object} verification.Status
// @Router /verification/{member} [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.Context(), c.Params("member"))
	if err != nil {
		return h.fail(c, "Verification status failed", err)
	}
	return c.JSON(status)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoPending):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrAlreadyVerified):
		status = fiber.StatusConflict
	case errors.Is(err, ErrCodeNotFound):
		status = fiber.StatusUnprocessableEntity
	}

	l := logger.WithRayID(h.service.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Info(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
