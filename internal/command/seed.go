package command

import (
	"context"

	"github.com/spec-kit/itops-service/internal/domain"
)

// SystemActorID marks audit records written by the service itself.
const SystemActorID = "system"

// SeedSuperAdmin creates a SUPERADMIN account at startup. No role grant
// through Execute reaches SUPERADMIN, so this is the only way one is made.
// It is not reachable over HTTP. An existing username yields CONFLICT.
func (e *Executor) SeedSuperAdmin(ctx context.Context, c CreateUser) (res Result, err error) {
	c.Role = domain.RoleSuperAdmin
	actor := domain.Actor{ID: SystemActorID, Role: domain.RoleSuperAdmin}
	defer func() { e.record(actor, c, err) }()

	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	return e.inTx(ctx, actor, func(s *session) (Result, error) {
		return e.insertUser(ctx, s, c, domain.RoleSuperAdmin)
	})
}
