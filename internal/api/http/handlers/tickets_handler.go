package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/dto"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	exec *command.Executor
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(exec *command.Executor) *TicketsHandler {
	return &TicketsHandler{exec: exec}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := execute(c, h.exec, command.CreateTicket{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(res.Ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	tickets, err := h.exec.ListTickets(c.UserContext(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	res, err := h.exec.Get(c.UserContext(), actor, domain.KindTicket, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(res.Ticket)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.UpdateTicket{
		ID:             c.Params("id"),
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		Status:         req.Status,
		ResolutionNote: req.ResolutionNote,
	})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if _, err := execute(c, h.exec, command.DeleteTicket{ID: c.Params("id")}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.AssignTicket{ID: c.Params("id"), AssigneeID: req.AssigneeID})
}

// UnassignTicket POST /tickets/:id/unassign.
func (h *TicketsHandler) UnassignTicket(c *fiber.Ctx) error {
	return h.respond(c, command.UnassignTicket{ID: c.Params("id")})
}

// ResolveTicket POST /tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	var req dto.ResolveTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.ResolveTicket{ID: c.Params("id"), ResolutionNote: req.ResolutionNote})
}

// ReopenTicket POST /tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	return h.respond(c, command.ReopenTicket{ID: c.Params("id")})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	return h.respond(c, command.CloseTicket{ID: c.Params("id")})
}

// Permissions GET /tickets/:id/permissions.
func (h *TicketsHandler) Permissions(c *fiber.Ctx) error {
	return permissions(c, h.exec, domain.KindTicket)
}

// StatusHistory GET /tickets/:id/status-history.
func (h *TicketsHandler) StatusHistory(c *fiber.Ctx) error {
	return statusHistory(c, h.exec, domain.KindTicket)
}

func (h *TicketsHandler) respond(c *fiber.Ctx, cmd command.Command) error {
	res, err := execute(c, h.exec, cmd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(res.Ticket)})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		OwnerID:        ticket.OwnerID,
		AssigneeID:     ticket.AssigneeID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		ResolutionNote: ticket.ResolutionNote,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
		ClosedAt:       ticket.ClosedAt,
	}
}

func historyResponses(entries []domain.StatusHistoryEntry) []dto.StatusHistoryResponse {
	resp := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.StatusHistoryResponse{
			ID:         entry.ID,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ActorID:    entry.ActorID,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}
