package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itops-service/internal/auth"
	"github.com/spec-kit/itops-service/internal/command"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// HeaderIdempotencyKey carries the client retry key for mutations.
const HeaderIdempotencyKey = "Idempotency-Key"

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return actor, nil
}

// commandContext carries the request context plus an optional idempotency key.
func commandContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if key := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); key != "" {
		ctx = command.WithIdempotencyKey(ctx, key)
	}
	return ctx
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// execute runs cmd as the authenticated caller.
func execute(c *fiber.Ctx, exec *command.Executor, cmd command.Command) (command.Result, error) {
	actor, err := currentActor(c)
	if err != nil {
		return command.Result{}, err
	}
	return exec.Execute(commandContext(c), actor, cmd)
}

func parseListFilter(c *fiber.Ctx) repository.ListFilter {
	filter := repository.ListFilter{}
	if v := c.Query("owner_id"); v != "" {
		filter.OwnerID = &v
	}
	if v := c.Query("assignee_id"); v != "" {
		filter.AssigneeID = &v
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, strings.ToUpper(part))
			}
		}
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filter.SearchTerm = &q
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Limit, filter.Offset = repository.Normalize(pageSize, (page-1)*pageSize)
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func statusHistory(c *fiber.Ctx, exec *command.Executor, kind domain.ResourceKind) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if _, err := exec.Get(c.UserContext(), actor, kind, c.Params("id")); err != nil {
		return err
	}
	entries, err := exec.StatusHistory(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(entries)})
}

func permissions(c *fiber.Ctx, exec *command.Executor, kind domain.ResourceKind) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	perms, err := exec.Permissions(c.UserContext(), actor, kind, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": perms})
}
