package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/operion-editor/pkg/editor"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	manager   *editor.Manager
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(manager *editor.Manager, validator *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		manager:   manager,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes mounts the editor API on router.
func RegisterRoutes(router fiber.Router, h *APIHandlers) {
	router.Get("/health", h.HealthCheck)
	router.Get("/palette", h.GetPalette)
	router.Get("/workflows", h.GetWorkflows)

	s := router.Group("/sessions")
	s.Get("/", h.GetSessions)
	s.Post("/", h.OpenSession)
	s.Get("/:id", h.GetSession)
	s.Delete("/:id", h.CloseSession)
	s.Post("/:id/commands", h.ApplyCommand)
	s.Post("/:id/undo", h.Undo)
	s.Post("/:id/redo", h.Redo)
	s.Post("/:id/save", h.SaveSession)
	s.Get("/:id/history", h.GetHistory)
	s.Delete("/:id/history", h.ClearHistory)
	s.Put("/:id/history/limit", h.SetUndoLimit)
	s.Delete("/:id/nodes/:nodeId/history", h.ForgetNode)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Persistence layer is healthy"
	httpStatus := http.StatusOK

	err := h.manager.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		message = "Persistence layer is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": message,
		},
		"sessions":  len(h.manager.List()),
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetPalette(c fiber.Ctx) error {
	return c.JSON(PaletteResponse{NodeTypes: h.manager.Palette().List()})
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.manager.Workflows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"sessions": h.manager.List()})
}

func (h *APIHandlers) OpenSession(c fiber.Ctx) error {
	var req OpenSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		session *editor.Session
		err     error
	)

	if req.WorkflowID != "" {
		session, err = h.manager.Open(c.Context(), req.WorkflowID, req.Owner)
	} else {
		session, err = h.manager.Create(c.Context(), editor.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Owner:       req.Owner,
			Variables:   req.Variables,
		})
	}

	if err != nil {
		return handleEditorError(c, err)
	}

	state, err := session.State()
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(state)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	state, err := session.State()
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) CloseSession(c fiber.Ctx) error {
	save := false

	if saveStr := c.Query("save"); saveStr != "" {
		parsed, err := strconv.ParseBool(saveStr)
		if err != nil {
			return badRequest(c, "Invalid save parameter: "+err.Error())
		}

		save = parsed
	}

	err := h.manager.Close(c.Context(), c.Params("id"), save)
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ApplyCommand(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	var req editor.CommandRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := session.Apply(c.Context(), req)
	if err != nil {
		return handleEditorError(c, err)
	}

	return h.respondApplied(c, session, result)
}

func (h *APIHandlers) Undo(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	return h.respondApplied(c, session, session.Undo(c.Context()))
}

func (h *APIHandlers) Redo(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	return h.respondApplied(c, session, session.Redo(c.Context()))
}

func (h *APIHandlers) respondApplied(c fiber.Ctx, session *editor.Session, result editor.ApplyResult) error {
	state, err := session.State()
	if err != nil {
		return internalError(c, err)
	}

	if !result.Applied {
		h.logger.DebugContext(c.Context(), "command not applied", "session_id", session.ID(), "reason", result.Reason)
	}

	return c.JSON(newApplyResponse(result, state))
}

func (h *APIHandlers) SaveSession(c fiber.Ctx) error {
	id := c.Params("id")

	err := h.manager.Save(c.Context(), id)
	if err != nil {
		return handleEditorError(c, err)
	}

	return h.GetSession(c)
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(session.History())
}

func (h *APIHandlers) ClearHistory(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	session.ClearHistory(c.Context())

	return c.JSON(session.History())
}

func (h *APIHandlers) SetUndoLimit(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	var req UndoLimitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err = session.SetUndoLimit(req.Limit)
	if err != nil {
		return handleEditorError(c, err)
	}

	return c.JSON(session.History())
}

func (h *APIHandlers) ForgetNode(c fiber.Ctx) error {
	session, err := h.manager.Get(c.Params("id"))
	if err != nil {
		return handleEditorError(c, err)
	}

	removed := session.ForgetNode(c.Context(), c.Params("nodeId"))

	return c.JSON(ForgetNodeResponse{Removed: removed, History: session.History()})
}
