package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/dto"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// ActivityHandler serves the audit trail.
type ActivityHandler struct {
	exec *command.Executor
}

func NewActivityHandler(exec *command.Executor) *ActivityHandler {
	return &ActivityHandler{exec: exec}
}

// ListActivity GET /activity.
func (h *ActivityHandler) ListActivity(c *fiber.Ctx) error {
	filter := repository.ActivityFilter{
		EntityKind: domain.ResourceKind(c.Query("entity_kind")),
		EntityID:   c.Query("entity_id"),
		ActorID:    c.Query("actor_id"),
	}
	if filter.EntityKind != "" && !filter.EntityKind.Valid() {
		return apperrors.NewValidationError("unknown entity_kind", map[string]any{"entity_kind": string(filter.EntityKind)})
	}
	filter.Limit, filter.Offset = repository.Normalize(c.QueryInt("limit", 50), c.QueryInt("offset", 0))

	entries, err := h.exec.Activity(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.ActivityResponse{
			ID:                e.ID,
			EventID:           e.EventID,
			ActorID:           e.ActorID,
			Action:            e.Action,
			EntityKind:        e.EntityKind,
			EntityID:          e.EntityID,
			EntityDisplayName: e.EntityDisplayName,
			Changes:           e.Changes,
			CreatedAt:         e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
