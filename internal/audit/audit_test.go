package audit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/itops-service/internal/audit"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
	"github.com/spec-kit/itops-service/internal/repository/memory"
)

type fakePublisher struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, payload)
	return nil
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	var nilStr *string
	s := "tech-1"
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: "Empty"},
		{name: "nil string pointer", in: nilStr, want: "Empty"},
		{name: "string pointer", in: &s, want: "tech-1"},
		{name: "true", in: true, want: "Yes"},
		{name: "false", in: false, want: "No"},
		{name: "time", in: ts, want: "2024-03-01T12:00:00Z"},
		{name: "named string", in: domain.TicketStatusResolved, want: "RESOLVED"},
		{name: "int", in: 42, want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, audit.FormatValue(tt.in))
		})
	}
}

func TestActivityLogger_ChangeSets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	logger := audit.NewActivityLogger(store.ActivityLog())

	buf := events.NewBuffer("admin")
	updated := buf.Emit(events.AssetUpdated, domain.KindAsset, "a1", map[string]any{
		events.KeyName: "Laptop",
		events.KeyChanges: events.Changes{
			"location": {Before: nil, After: "HQ"},
		},
	})
	status := buf.Emit(events.TicketStatusChanged, domain.KindTicket, "t1", map[string]any{
		events.KeyTitle:      "VPN down",
		events.KeyFromStatus: "OPEN",
		events.KeyToStatus:   "RESOLVED",
	})
	unassigned := buf.Emit(events.ResourceUnassigned, domain.KindProject, "p1", map[string]any{
		events.KeyResourceType:       "project",
		events.KeyPreviousAssigneeID: "tech-1",
	})

	for _, evt := range []events.Event{updated, status, unassigned} {
		require.NoError(t, logger.Handle(ctx, evt))
	}

	entries, err := store.ActivityLog().List(ctx, repository.ActivityFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "asset.updated", entries[0].Action)
	assert.Equal(t, "Laptop", entries[0].EntityDisplayName)
	assert.Equal(t, domain.FieldChange{Before: "Empty", After: "HQ"}, entries[0].Changes["location"])

	assert.Equal(t, "VPN down", entries[1].EntityDisplayName)
	assert.Equal(t, domain.FieldChange{Before: "OPEN", After: "RESOLVED"}, entries[1].Changes["status"])
	assert.Equal(t, "admin", entries[1].ActorID)

	assert.Equal(t, "project p1", entries[2].EntityDisplayName)
	assert.Equal(t, domain.FieldChange{Before: "tech-1", After: "Empty"}, entries[2].Changes["assignee"])
}

func TestHandlers_AreIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	logger := audit.NewActivityLogger(store.ActivityLog())
	writer := audit.NewStatusHistoryWriter(store.StatusHistory())

	evt := events.NewBuffer("a").Emit(events.ProjectStatusChanged, domain.KindProject, "p1", map[string]any{
		events.KeyFromStatus: "PLANNING",
		events.KeyToStatus:   "ACTIVE",
	})
	for i := 0; i < 3; i++ {
		require.NoError(t, logger.Handle(ctx, evt))
		require.NoError(t, writer.Handle(ctx, evt))
	}

	entries, err := store.ActivityLog().List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	history, err := store.StatusHistory().ListByEntity(ctx, domain.KindProject, "p1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "PLANNING", history[0].FromStatus)
	assert.Equal(t, "ACTIVE", history[0].ToStatus)
	assert.Equal(t, evt.ID.String(), history[0].EventID)
	assert.NotEqual(t, entries[0].ID, history[0].ID, "handlers derive distinct ids from one event")
}

func TestStatusHistoryWriter_SubscribesToStatusEventsOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := memory.NewStore()
	d := events.NewDispatcher(zap.NewNop(), nil)
	audit.NewStatusHistoryWriter(store.StatusHistory()).Register(d)

	buf := events.NewBuffer("a")
	buf.Emit(events.UserUpdated, domain.KindUser, "u1", nil)
	buf.Emit(events.UserStatusChanged, domain.KindUser, "u1", map[string]any{
		events.KeyFromStatus: "ACTIVE",
		events.KeyToStatus:   "INACTIVE",
	})
	buf.Emit(events.TicketResolved, domain.KindTicket, "t1", nil)
	d.Deliver(ctx, buf.Events())

	users, err := store.StatusHistory().ListByEntity(ctx, domain.KindUser, "u1")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	tickets, err := store.StatusHistory().ListByEntity(ctx, domain.KindTicket, "t1")
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestActivityLogger_SurfacesStoreErrors(t *testing.T) {
	t.Parallel()
	store := memory.NewStore()
	store.FailAuditWrites(errors.New("offline"))

	evt := events.NewBuffer("a").Emit(events.TicketCreated, domain.KindTicket, "t1", nil)
	err := audit.NewActivityLogger(store.ActivityLog()).Handle(context.Background(), evt)
	assert.ErrorContains(t, err, "offline")
}

func TestRedisPublisher(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "itops:events:asset", audit.Channel("itops:events", domain.KindAsset))

	pub := &fakePublisher{}
	p := audit.NewRedisPublisher(pub, "itops:events")
	evt := events.NewBuffer("a").Emit(events.ResourceAssigned, domain.KindAsset, "a1", map[string]any{
		events.KeyAssigneeID: "tech-1",
	})
	require.NoError(t, p.Handle(context.Background(), evt))

	require.Len(t, pub.channels, 1)
	assert.Equal(t, "itops:events:asset", pub.channels[0])

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[0], &decoded))
	assert.Equal(t, "resource.assigned", decoded["type"])
	assert.Equal(t, "a1", decoded["entity_id"])

	pub.err = errors.New("connection refused")
	assert.ErrorContains(t, p.Handle(context.Background(), evt), "connection refused")
}
