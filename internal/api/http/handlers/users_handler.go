package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/api/dto"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
)

// UsersHandler exposes account management.
type UsersHandler struct {
	exec *command.Executor
}

// NewUsersHandler constructs handler.
func NewUsersHandler(exec *command.Executor) *UsersHandler {
	return &UsersHandler{exec: exec}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	res, err := h.exec.Get(c.UserContext(), actor, domain.KindUser, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(res.User)})
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := execute(c, h.exec, command.CreateUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(res.User)})
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	users, err := h.exec.ListUsers(c.UserContext(), actor, parseListFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	res, err := h.exec.Get(c.UserContext(), actor, domain.KindUser, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(res.User)})
}

// UpdateUser PATCH /users/:id.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.UpdateUser{
		ID:       c.Params("id"),
		Email:    req.Email,
		FullName: req.FullName,
		Active:   req.Active,
	})
}

// ChangeRole POST /users/:id/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	var req dto.ChangeRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.respond(c, command.ChangeUserRole{ID: c.Params("id"), Role: req.Role})
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	if _, err := execute(c, h.exec, command.DeleteUser{ID: c.Params("id")}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UsersHandler) Permissions(c *fiber.Ctx) error {
	return permissions(c, h.exec, domain.KindUser)
}

func (h *UsersHandler) StatusHistory(c *fiber.Ctx) error {
	return statusHistory(c, h.exec, domain.KindUser)
}

func (h *UsersHandler) respond(c *fiber.Ctx, cmd command.Command) error {
	res, err := execute(c, h.exec, cmd)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(res.User)})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
