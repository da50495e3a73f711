package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/dto"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
)

// ProjectsHandler manages project endpoints.
type ProjectsHandler struct {
	exec *command.Executor
}

func NewProjectsHandler(exec *command.Executor) *ProjectsHandler {
	return &ProjectsHandler{exec: exec}
}

// CreateProject POST /projects.
func (h *ProjectsHandler) CreateProject(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := execute(c, h.exec, command.CreateProject{
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projectResponse(res.Project)})
}

// ListProjects GET /projects.
func (h *ProjectsHandler) ListProjects(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	projects, err := h.exec.ListProjects(c.UserContext(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetProject GET /projects/:id.
func (h *ProjectsHandler) GetProject(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	res, err := h.exec.Get(c.UserContext(), actor, domain.KindProject, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(res.Project)})
}

// UpdateProject PATCH /projects/:id.
func (h *ProjectsHandler) UpdateProject(c *fiber.Ctx) error {
	var req dto.UpdateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.UpdateProject{
		ID:          c.Params("id"),
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})
}

// DeleteProject DELETE /projects/:id.
func (h *ProjectsHandler) DeleteProject(c *fiber.Ctx) error {
	if _, err := execute(c, h.exec, command.DeleteProject{ID: c.Params("id")}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AssignProject POST /projects/:id/assign.
func (h *ProjectsHandler) AssignProject(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.AssignProject{ID: c.Params("id"), AssigneeID: req.AssigneeID})
}

// UnassignProject POST /projects/:id/unassign.
func (h *ProjectsHandler) UnassignProject(c *fiber.Ctx) error {
	return h.respond(c, command.UnassignProject{ID: c.Params("id")})
}

func (h *ProjectsHandler) Permissions(c *fiber.Ctx) error {
	return permissions(c, h.exec, domain.KindProject)
}

func (h *ProjectsHandler) StatusHistory(c *fiber.Ctx) error {
	return statusHistory(c, h.exec, domain.KindProject)
}

func (h *ProjectsHandler) respond(c *fiber.Ctx, cmd command.Command) error {
	res, err := execute(c, h.exec, cmd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(res.Project)})
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          project.ID,
		OwnerID:     project.OwnerID,
		AssigneeID:  project.AssigneeID,
		Name:        project.Name,
		Description: project.Description,
		Priority:    project.Priority,
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
