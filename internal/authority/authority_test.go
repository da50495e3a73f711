package authority_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

func strPtr(s string) *string { return &s }

func actor(id string, role domain.Role) domain.Actor {
	return domain.Actor{ID: id, Role: role}
}

func resource(kind domain.ResourceKind, owner domain.Actor, assignee *string, status string) domain.Resource {
	return domain.Resource{Kind: kind, ID: "res-1", Owner: owner, AssigneeID: assignee, Status: status}
}

func TestRoleRanks(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.HasHigherOrEqual(domain.RoleManager, domain.RoleITAdmin))
	assert.True(t, domain.HasHigherOrEqual(domain.RoleITAdmin, domain.RoleManager))
	assert.False(t, domain.HasStrictlyHigher(domain.RoleManager, domain.RoleITAdmin))
	assert.False(t, domain.HasStrictlyHigher(domain.RoleITAdmin, domain.RoleManager))
	assert.True(t, domain.HasStrictlyHigher(domain.RoleSuperAdmin, domain.RoleManager))
	assert.Equal(t, 0, domain.Rank(domain.Role("GHOST")))
	assert.True(t, domain.HasStrictlyHigher(domain.RoleViewer, domain.Role("GHOST")))
}

func TestCanCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module authority.Module
		role   domain.Role
		want   bool
	}{
		{name: "viewer ticket", module: authority.Tickets, role: domain.RoleViewer, want: false},
		{name: "technician ticket", module: authority.Tickets, role: domain.RoleTechnician, want: true},
		{name: "viewer asset", module: authority.Assets, role: domain.RoleViewer, want: false},
		{name: "technician asset", module: authority.Assets, role: domain.RoleTechnician, want: true},
		{name: "technician project", module: authority.Projects, role: domain.RoleTechnician, want: false},
		{name: "it admin project", module: authority.Projects, role: domain.RoleITAdmin, want: true},
		{name: "manager project", module: authority.Projects, role: domain.RoleManager, want: true},
		{name: "technician user", module: authority.Users, role: domain.RoleTechnician, want: false},
		{name: "it admin user", module: authority.Users, role: domain.RoleITAdmin, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.module.CanCreate(actor("a", tt.role)))
		})
	}
}

func TestAssertCreate_ViewerDenied(t *testing.T) {
	t.Parallel()

	err := authority.AssertCreate(authority.Tickets, actor("v", domain.RoleViewer))
	require.Error(t, err)
	assert.True(t, apperrors.IsPermissionDenied(err))

	de := apperrors.ToDomainError(err)
	assert.Equal(t, "create", de.Details["action"])
	assert.Equal(t, "ticket", de.Details["resource"])
}

func TestCanUpdate_SharedRule(t *testing.T) {
	t.Parallel()

	tech := actor("tech", domain.RoleTechnician)
	tests := []struct {
		name  string
		actor domain.Actor
		res   domain.Resource
		want  bool
	}{
		{
			name:  "superadmin always",
			actor: actor("s", domain.RoleSuperAdmin),
			res:   resource(domain.KindTicket, actor("o", domain.RoleSuperAdmin), nil, "OPEN"),
			want:  true,
		},
		{
			name:  "manager over superadmin owner",
			actor: actor("m", domain.RoleManager),
			res:   resource(domain.KindAsset, actor("o", domain.RoleSuperAdmin), nil, "ACTIVE"),
			want:  true,
		},
		{
			name:  "it admin over technician owner",
			actor: actor("i", domain.RoleITAdmin),
			res:   resource(domain.KindTicket, actor("o", domain.RoleTechnician), nil, "OPEN"),
			want:  true,
		},
		{
			name:  "it admin over manager owner",
			actor: actor("i", domain.RoleITAdmin),
			res:   resource(domain.KindTicket, actor("o", domain.RoleManager), nil, "OPEN"),
			want:  false,
		},
		{
			name:  "it admin over peer",
			actor: actor("i", domain.RoleITAdmin),
			res:   resource(domain.KindProject, actor("o", domain.RoleITAdmin), nil, "PLANNING"),
			want:  false,
		},
		{
			name:  "technician assigned",
			actor: tech,
			res:   resource(domain.KindTicket, actor("o", domain.RoleViewer), strPtr("tech"), "OPEN"),
			want:  true,
		},
		{
			name:  "technician creator but unassigned",
			actor: tech,
			res:   resource(domain.KindTicket, tech, nil, "OPEN"),
			want:  false,
		},
		{
			name:  "viewer owner",
			actor: actor("v", domain.RoleViewer),
			res:   resource(domain.KindTicket, actor("v", domain.RoleViewer), strPtr("v"), "OPEN"),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := authority.For(tt.res.Kind)
			require.NotNil(t, m)
			assert.Equal(t, tt.want, m.CanUpdate(tt.actor, tt.res))
			err := authority.AssertUpdate(m, tt.actor, tt.res)
			assert.Equal(t, !tt.want, apperrors.IsPermissionDenied(err))
		})
	}
}

func TestAssign_Technician(t *testing.T) {
	t.Parallel()

	tech := actor("tech", domain.RoleTechnician)
	open := resource(domain.KindTicket, actor("o", domain.RoleViewer), nil, "OPEN")
	taken := resource(domain.KindTicket, actor("o", domain.RoleViewer), strPtr("other"), "OPEN")

	assert.True(t, authority.Tickets.CanAssign(tech, open, "tech"))
	assert.False(t, authority.Tickets.CanAssign(tech, open, "other"))
	assert.False(t, authority.Tickets.CanAssign(tech, taken, "tech"))

	mine := resource(domain.KindTicket, actor("o", domain.RoleViewer), strPtr("tech"), "OPEN")
	assert.True(t, authority.Tickets.CanUnassign(tech, mine))
	assert.False(t, authority.Tickets.CanUnassign(tech, taken))

	require.NoError(t, authority.AssertAssign(authority.Tickets, tech, open, "tech"))
	assert.True(t, apperrors.IsPermissionDenied(authority.AssertUnassign(authority.Tickets, tech, taken)))
}

func TestAssign_AdminAndViewer(t *testing.T) {
	t.Parallel()

	taken := resource(domain.KindAsset, actor("o", domain.RoleViewer), strPtr("other"), "ACTIVE")

	assert.True(t, authority.Assets.CanAssign(actor("i", domain.RoleITAdmin), taken, "someone"))
	assert.True(t, authority.Assets.CanUnassign(actor("m", domain.RoleManager), taken))
	assert.False(t, authority.Assets.CanAssign(actor("v", domain.RoleViewer), taken, "v"))
	assert.False(t, authority.Assets.CanUnassign(actor("v", domain.RoleViewer), taken))
}

func TestAssetDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		actor     domain.Actor
		ownerRole domain.Role
		assignee  *string
		want      bool
	}{
		{name: "technician outranks viewer owner", actor: actor("t", domain.RoleTechnician), ownerRole: domain.RoleViewer, want: true},
		{name: "technician vs technician owner even if assigned", actor: actor("t", domain.RoleTechnician), ownerRole: domain.RoleTechnician, assignee: strPtr("t"), want: false},
		{name: "it admin vs manager owner", actor: actor("i", domain.RoleITAdmin), ownerRole: domain.RoleManager, want: false},
		{name: "manager override", actor: actor("m", domain.RoleManager), ownerRole: domain.RoleSuperAdmin, want: true},
		{name: "viewer vs orphaned owner", actor: actor("v", domain.RoleViewer), ownerRole: domain.Role(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := resource(domain.KindAsset, actor("owner", tt.ownerRole), tt.assignee, "ACTIVE")
			assert.Equal(t, tt.want, authority.Assets.CanDelete(tt.actor, res))
		})
	}
}

func TestTicketLifecycle(t *testing.T) {
	t.Parallel()

	tech := actor("tech", domain.RoleTechnician)
	owner := actor("o", domain.RoleViewer)
	manager := actor("m", domain.RoleManager)

	assert.True(t, authority.Tickets.CanResolve(tech, resource(domain.KindTicket, owner, strPtr("tech"), "IN_PROGRESS")))
	assert.False(t, authority.Tickets.CanResolve(tech, resource(domain.KindTicket, owner, strPtr("tech"), "RESOLVED")))
	assert.True(t, authority.Tickets.CanClose(tech, resource(domain.KindTicket, owner, strPtr("tech"), "RESOLVED")))
	assert.False(t, authority.Tickets.CanClose(tech, resource(domain.KindTicket, owner, strPtr("tech"), "OPEN")))

	assert.False(t, authority.Tickets.CanReopen(tech, resource(domain.KindTicket, owner, strPtr("tech"), "CLOSED")))
	assert.True(t, authority.Tickets.CanReopen(manager, resource(domain.KindTicket, owner, nil, "CLOSED")))
	assert.True(t, authority.Tickets.CanReopen(actor("i", domain.RoleITAdmin), resource(domain.KindTicket, owner, nil, "RESOLVED")))
	assert.False(t, authority.Tickets.CanReopen(manager, resource(domain.KindTicket, owner, nil, "OPEN")))

	err := authority.Tickets.AssertReopen(tech, resource(domain.KindTicket, owner, strPtr("tech"), "CLOSED"))
	assert.True(t, apperrors.IsPermissionDenied(err))
}

func TestUserAuthority(t *testing.T) {
	t.Parallel()

	super := actor("s", domain.RoleSuperAdmin)
	itAdmin := actor("i", domain.RoleITAdmin)
	manager := actor("m", domain.RoleManager)
	techUser := (&domain.User{ID: "t", Role: domain.RoleTechnician}).Resource()
	viewerUser := (&domain.User{ID: "v", Role: domain.RoleViewer}).Resource()
	managerUser := (&domain.User{ID: "m2", Role: domain.RoleManager}).Resource()

	t.Run("self edit allowed for any role", func(t *testing.T) {
		t.Parallel()
		assert.True(t, authority.Users.CanUpdate(actor("v", domain.RoleViewer), viewerUser))
		assert.False(t, authority.Users.CanUpdate(actor("v2", domain.RoleViewer), viewerUser))
	})

	t.Run("delete is superadmin only and never self", func(t *testing.T) {
		t.Parallel()
		assert.True(t, authority.Users.CanDelete(super, techUser))
		assert.False(t, authority.Users.CanDelete(super, (&domain.User{ID: "s", Role: domain.RoleSuperAdmin}).Resource()))
		assert.False(t, authority.Users.CanDelete(manager, techUser))
	})

	t.Run("users are never assigned", func(t *testing.T) {
		t.Parallel()
		assert.False(t, authority.Users.CanAssign(super, techUser, "s"))
		assert.False(t, authority.Users.CanUnassign(super, techUser))
	})

	t.Run("it admin promotes technician below own rank only", func(t *testing.T) {
		t.Parallel()
		assert.False(t, authority.Users.CanChangeRole(itAdmin, techUser, domain.RoleITAdmin))
		assert.False(t, authority.Users.CanChangeRole(itAdmin, techUser, domain.RoleManager))
		assert.True(t, authority.Users.CanChangeRole(itAdmin, viewerUser, domain.RoleTechnician))
	})

	t.Run("manager cannot touch a peer rank", func(t *testing.T) {
		t.Parallel()
		assert.False(t, authority.Users.CanChangeRole(manager, managerUser, domain.RoleViewer))
		assert.False(t, authority.Users.CanChangeRole(manager, (&domain.User{ID: "i2", Role: domain.RoleITAdmin}).Resource(), domain.RoleViewer))
	})

	t.Run("superadmin grants up to manager but not to self", func(t *testing.T) {
		t.Parallel()
		assert.False(t, authority.Users.CanChangeRole(super, techUser, domain.RoleSuperAdmin))
		assert.False(t, authority.Users.CanChangeRole(super, managerUser, domain.RoleSuperAdmin))
		assert.True(t, authority.Users.CanChangeRole(super, techUser, domain.RoleManager))
		assert.True(t, authority.Users.CanChangeRole(super, techUser, domain.RoleITAdmin))
		assert.True(t, authority.Users.CanChangeRole(super, managerUser, domain.RoleViewer))
		assert.False(t, authority.Users.CanChangeRole(super, (&domain.User{ID: "s", Role: domain.RoleSuperAdmin}).Resource(), domain.RoleViewer))
	})

	t.Run("no grant at or above own rank", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			actor domain.Actor
			role  domain.Role
			want  bool
		}{
			{actor: super, role: domain.RoleSuperAdmin, want: false},
			{actor: super, role: domain.RoleManager, want: true},
			{actor: super, role: domain.RoleViewer, want: true},
			{actor: manager, role: domain.RoleManager, want: false},
			{actor: manager, role: domain.RoleITAdmin, want: false},
			{actor: manager, role: domain.RoleTechnician, want: true},
			{actor: itAdmin, role: domain.RoleITAdmin, want: false},
			{actor: itAdmin, role: domain.RoleTechnician, want: true},
			{actor: actor("t", domain.RoleTechnician), role: domain.RoleViewer, want: false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, authority.Users.CanGrantRole(tt.actor, tt.role), "%s grants %s", tt.actor.Role, tt.role)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		t.Parallel()
		assert.False(t, authority.Users.CanGrantRole(super, domain.Role("ROOT")))
		err := authority.Users.AssertChangeRole(itAdmin, techUser, domain.RoleITAdmin)
		assert.True(t, apperrors.IsPermissionDenied(err))
	})
}

func TestGetPermissions_AgreesWithAsserts(t *testing.T) {
	t.Parallel()

	roles := append(domain.Roles(), domain.Role("GHOST"))
	assignees := []*string{nil, strPtr("actor"), strPtr("someone")}
	statuses := map[domain.ResourceKind][]string{
		domain.KindTicket:  {"OPEN", "IN_PROGRESS", "RESOLVED", "CLOSED"},
		domain.KindAsset:   {"ACTIVE"},
		domain.KindProject: {"PLANNING"},
		domain.KindUser:    {"ACTIVE"},
	}

	for _, kind := range []domain.ResourceKind{domain.KindTicket, domain.KindAsset, domain.KindProject, domain.KindUser} {
		m := authority.For(kind)
		for _, actorRole := range roles {
			for _, ownerRole := range roles {
				for _, ownerID := range []string{"actor", "owner"} {
					for _, assignee := range assignees {
						for _, status := range statuses[kind] {
							a := actor("actor", actorRole)
							res := domain.Resource{Kind: kind, ID: ownerID, Owner: actor(ownerID, ownerRole), AssigneeID: assignee, Status: status}
							if kind == domain.KindUser {
								res.AssigneeID = nil
							}
							perms := authority.GetPermissions(m, a, res)

							assert.Equal(t, perms.CanView, authority.AssertRead(m, a, res) == nil)
							assert.Equal(t, perms.CanUpdate, authority.AssertUpdate(m, a, res) == nil)
							assert.Equal(t, perms.CanDelete, authority.AssertDelete(m, a, res) == nil)
							assert.Equal(t, perms.CanUnassign, authority.AssertUnassign(m, a, res) == nil)
							assert.Equal(t, perms.CanSelfAssign, authority.AssertAssign(m, a, res, a.ID) == nil)
							assert.Equal(t, perms.AssignedToMe, res.AssignedTo(a.ID))
							if kind == domain.KindTicket {
								assert.Equal(t, perms.CanResolve, authority.Tickets.AssertResolve(a, res) == nil)
								assert.Equal(t, perms.CanClose, authority.Tickets.AssertClose(a, res) == nil)
								assert.Equal(t, perms.CanReopen, authority.Tickets.AssertReopen(a, res) == nil)
							}
						}
					}
				}
			}
		}
	}
}

func TestForUnknownKind(t *testing.T) {
	t.Parallel()
	assert.Nil(t, authority.For(domain.ResourceKind("invoice")))
}

func TestUserAuthority_ChangeStatus(t *testing.T) {
	t.Parallel()

	viewer := (&domain.User{ID: "v", Role: domain.RoleViewer}).Resource()
	manager := (&domain.User{ID: "m", Role: domain.RoleManager}).Resource()

	assert.False(t, authority.Users.CanChangeStatus(actor("v", domain.RoleViewer), viewer), "no self deactivation")
	assert.True(t, authority.Users.CanChangeStatus(actor("i", domain.RoleITAdmin), viewer))
	assert.False(t, authority.Users.CanChangeStatus(actor("i", domain.RoleITAdmin), manager))
	assert.True(t, apperrors.IsPermissionDenied(authority.Users.AssertChangeStatus(actor("m", domain.RoleManager), manager)))
}
