package rolesync

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"

	"rank-sync/core/discord"
	"rank-sync/core/logger"
	"rank-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// StatusSource exposes the gateway connection state.
type StatusSource interface {
	Snapshot() discord.StateSnapshot
}

// Status is the response of the status endpoint.
type Status struct {
	Gateway    discord.StateSnapshot `json:"gateway"`
	LastPasses []PassSummary         `json:"last_passes"`
}

// StreamEvent is one NDJSON line of a streamed resync.
type StreamEvent struct {
	Type     string              `json:"type"`
	Progress *reconcile.Progress `json:"progress,omitempty"`
	Stats    *reconcile.Stats    `json:"stats,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// Handler handles HTTP requests for role sync.
type Handler struct {
	dispatcher *Dispatcher
	ledger     *Ledger
	state      StatusSource
	gatherer   prometheus.Gatherer
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler. ledger, state and gatherer may be nil.
func NewHandler(dispatcher *Dispatcher, ledger *Ledger, state StatusSource, gatherer prometheus.Gatherer, logger *zap.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		ledger:     ledger,
		state:      state,
		gatherer:   gatherer,
		logger:     logger,
	}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	if h.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/:guild", h.HandleResync)
	group.Post("/:guild/members/:member", h.HandleMemberResync)
	group.Get("/:guild/members/:member", h.HandleMemberEntry)
	group.Get("/:guild/reports", h.HandleListReports)
	group.Get("/:guild/reports/:pass", h.HandleGetReport)
}

// HandleStatus returns the gateway state and the latest pass of each guild.
// @Summary Sync Status
// @Tags sync
// @Produce json
// @Success 200 {object} rolesync.Status
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status := Status{LastPasses: h.dispatcher.LastPasses()}
	if h.state != nil {
		status.Gateway = h.state.Snapshot()
	}
	return c.JSON(status)
}

// HandleResync runs a full guild pass and streams its progress.
// @Summary Resync Guild
// @Description Reconciles every member of the guild. The response is newline-delimited JSON: progress events followed by one result event with the pass stats.
// @Tags sync
// @Produce application/x-ndjson
// @Param guild path string true "Guild ID"
// @Success 200 {object} rolesync.StreamEvent
// @Router /sync/{guild} [post]
func (h *Handler) HandleResync(c *fiber.Ctx) error {
	guildID := c.Params("guild")
	l := logger.WithRayID(h.logger, c).With(zap.String("guild_id", guildID))
	l.Info("Manual resync requested")

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// The request context ends when the handler returns; the stream owns its own.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		enc := json.NewEncoder(w)
		write := func(ev StreamEvent) {
			if err := enc.Encode(ev); err != nil {
				cancel()
				return
			}
			if err := w.Flush(); err != nil {
				l.Warn("Resync client went away, cancelling pass", zap.Error(err))
				cancel()
			}
		}

		stats, err := h.dispatcher.Resync(ctx, guildID, func(p reconcile.Progress) {
			write(StreamEvent{Type: "progress", Progress: &p})
		})

		result := StreamEvent{Type: "result", Stats: &stats}
		if err != nil {
			result.Error = err.Error()
		}
		write(result)
	})
	return nil
}

// HandleMemberResync reconciles one member.
// @Summary Resync Member
// @Tags sync
// @Produce json
// @Param guild path string true "Guild ID"
// @Param member path string true "Member ID"
// @Success 200 {object} reconcile.Outcome
// @Failure 404 {object} map[string]string "Unknown member"
// @Router /sync/{guild}/members/{member} [post]
func (h *Handler) HandleMemberResync(c *fiber.Ctx) error {
	outcome, err := h.dispatcher.Member(c.Context(), c.Params("guild"), c.Params("member"))
	if err != nil {
		return h.fail(c, "Member resync failed", err)
	}

	resp := fiber.Map{"outcome": outcome}
	if outcome.Failed() {
		resp["error"] = outcome.Err().Error()
	}
	return c.JSON(resp)
}

// HandleMemberEntry returns a member's last recorded sync.
// @Summary Member Sync Entry
// @Tags sync
// @Produce json
// @Param guild path string true "Guild ID"
// @Param member path string true "Member ID"
// @Success 200 {object} rolesync.GuildUser
// @Failure 404 {object} map[string]string "Never synced"
// @Router /sync/{guild}/members/{member} [get]
func (h *Handler) HandleMemberEntry(c *fiber.Ctx) error {
	if h.ledger == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "sync ledger is not available"})
	}
	entry, err := h.ledger.Entry(c.Context(), c.Params("guild"), c.Params("member"))
	if err != nil {
		return h.fail(c, "Read sync entry failed", err)
	}
	if entry == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member was never synced"})
	}
	return c.JSON(entry)
}

// HandleListReports lists the archived pass reports of a guild.
// @Summary List Sync Reports
// @Tags sync
// @Produce json
// @Param guild path string true "Guild ID"
// @Success 200 {array} rolesync.ReportInfo
// @Failure 503 {object} map[string]string "Archive disabled"
// @Router /sync/{guild}/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	archive := h.dispatcher.Archive()
	if archive == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report archive is disabled"})
	}
	reports, err := archive.List(c.Context(), c.Params("guild"))
	if err != nil {
		return h.fail(c, "List sync reports failed", err)
	}
	return c.JSON(reports)
}

// HandleGetReport returns one archived pass report.
// @Summary Get Sync Report
// @Tags sync
// @Produce json
// @Param guild path string true "Guild ID"
// @Param pass path string true "Pass ID"
// @Success 200 {object} rolesync.Report
// @Failure 404 {object} map[string]string "Report not found"
// @Router /sync/{guild}/reports/{pass} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	archive := h.dispatcher.Archive()
	if archive == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "report archive is disabled"})
	}
	report, err := archive.Get(c.Context(), c.Params("guild"), c.Params("pass"))
	if err != nil {
		return h.fail(c, "Get sync report failed", err)
	}
	return c.JSON(report)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, reconcile.ErrUnknownMember), errors.Is(err, ErrReportNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, reconcile.ErrBotMember):
		status = fiber.StatusBadRequest
	case errors.Is(err, reconcile.ErrPermissionDenied):
		status = fiber.StatusForbidden
	}

	l := logger.WithRayID(h.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Info(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
