package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/dto"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
)

// AssetsHandler manages asset endpoints.
type AssetsHandler struct {
	exec *command.Executor
}

func NewAssetsHandler(exec *command.Executor) *AssetsHandler {
	return &AssetsHandler{exec: exec}
}

// CreateAsset POST /assets.
func (h *AssetsHandler) CreateAsset(c *fiber.Ctx) error {
	var req dto.CreateAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := execute(c, h.exec, command.CreateAsset{
		Name:         req.Name,
		AssetTag:     req.AssetTag,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		Status:       req.Status,
		AssigneeID:   req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": assetResponse(res.Asset)})
}

// ListAssets GET /assets.
func (h *AssetsHandler) ListAssets(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	assets, err := h.exec.ListAssets(c.UserContext(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAsset GET /assets/:id.
func (h *AssetsHandler) GetAsset(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	res, err := h.exec.Get(c.UserContext(), actor, domain.KindAsset, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(res.Asset)})
}

// UpdateAsset PATCH /assets/:id.
func (h *AssetsHandler) UpdateAsset(c *fiber.Ctx) error {
	var req dto.UpdateAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.UpdateAsset{
		ID:           c.Params("id"),
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Location:     req.Location,
		Status:       req.Status,
	})
}

// DeleteAsset DELETE /assets/:id.
func (h *AssetsHandler) DeleteAsset(c *fiber.Ctx) error {
	if _, err := execute(c, h.exec, command.DeleteAsset{ID: c.Params("id")}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignAsset POST /assets/:id/assign.
func (h *AssetsHandler) AssignAsset(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.AssignAsset{ID: c.Params("id"), AssigneeID: req.AssigneeID})
}

// UnassignAsset POST /assets/:id/unassign.
func (h *AssetsHandler) UnassignAsset(c *fiber.Ctx) error {
	return h.respond(c, command.UnassignAsset{ID: c.Params("id")})
}

func (h *AssetsHandler) Permissions(c *fiber.Ctx) error {
	return permissions(c, h.exec, domain.KindAsset)
}

func (h *AssetsHandler) StatusHistory(c *fiber.Ctx) error {
	return statusHistory(c, h.exec, domain.KindAsset)
}

func (h *AssetsHandler) respond(c *fiber.Ctx, cmd command.Command) error {
	res, err := execute(c, h.exec, cmd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(res.Asset)})
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:           asset.ID,
		OwnerID:      asset.OwnerID,
		AssigneeID:   asset.AssigneeID,
		Name:         asset.Name,
		AssetTag:     asset.AssetTag,
		SerialNumber: asset.SerialNumber,
		Location:     asset.Location,
		Status:       asset.Status,
		CreatedAt:    asset.CreatedAt,
		UpdatedAt:    asset.UpdatedAt,
	}
}
