package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/itops-service/internal/config"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/notify"
)

type webhook struct {
	mu    sync.Mutex
	notes []notify.Notification
	code  int
}

func (w *webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var n notify.Notification
	if err := json.Unmarshal(body, &n); err == nil {
		w.mu.Lock()
		w.notes = append(w.notes, n)
		w.mu.Unlock()
	}
	if w.code != 0 {
		rw.WriteHeader(w.code)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (w *webhook) received() []notify.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]notify.Notification(nil), w.notes...)
}

func emit(actor string, t events.EventType, kind domain.ResourceKind, id string, payload map[string]any) events.Event {
	return events.NewBuffer(actor).Emit(t, kind, id, payload)
}

func TestBuildRecipients(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		evt    events.Event
		want   []string
		ok     bool
		prefix string
	}{
		{
			name: "assignment notifies new and previous assignee",
			evt: emit("u-manager", events.ResourceAssigned, domain.KindTicket, "t1", map[string]any{
				events.KeyTitle:              "Printer",
				events.KeyAssigneeID:         "u-tech",
				events.KeyPreviousAssigneeID: "u-tech2",
			}),
			want:   []string{"u-tech", "u-tech2"},
			ok:     true,
			prefix: `ticket "Printer" assigned`,
		},
		{
			name: "self assignment is silent",
			evt: emit("u-tech", events.ResourceAssigned, domain.KindAsset, "a1", map[string]any{
				events.KeyAssigneeID: "u-tech",
			}),
			ok: false,
		},
		{
			name: "unassignment notifies previous assignee",
			evt: emit("u-manager", events.ResourceUnassigned, domain.KindProject, "p1", map[string]any{
				events.KeyName:               "Rollout",
				events.KeyPreviousAssigneeID: "u-tech",
			}),
			want:   []string{"u-tech"},
			ok:     true,
			prefix: `project "Rollout" unassigned`,
		},
		{
			name: "status change notifies owner and assignee",
			evt: emit("u-tech", events.TicketStatusChanged, domain.KindTicket, "t1", map[string]any{
				events.KeyFromStatus: "OPEN",
				events.KeyToStatus:   "RESOLVED",
				events.KeyOwnerID:    "u-viewer",
				events.KeyAssigneeID: "u-tech",
			}),
			want:   []string{"u-viewer"},
			ok:     true,
			prefix: "ticket t1 moved from OPEN to RESOLVED",
		},
		{
			name: "role change notifies the user",
			evt: emit("u-super", events.UserRoleChanged, domain.KindUser, "u-viewer", map[string]any{
				events.KeyFromRole: "VIEWER",
				events.KeyToRole:   "TECHNICIAN",
			}),
			want:   []string{"u-viewer"},
			ok:     true,
			prefix: "role changed from VIEWER to TECHNICIAN",
		},
		{
			name: "other events are ignored",
			evt:  emit("u-super", events.TicketCreated, domain.KindTicket, "t1", nil),
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			note, ok := notify.Build(tt.evt)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, note.Recipients)
			assert.Contains(t, note.Summary, tt.prefix)
			assert.Equal(t, tt.evt.ID.String(), note.EventID)
		})
	}
}

func TestNotifierPostsWebhook(t *testing.T) {
	t.Parallel()

	hook := &webhook{}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	core, logs := observer.New(zap.InfoLevel)
	n := notify.NewNotifier(config.NotifyConfig{Enabled: true, WebhookURL: srv.URL, TimeoutSeconds: 2}, zap.New(core))

	d := events.NewDispatcher(zap.NewNop(), nil)
	n.Register(d)
	d.Deliver(context.Background(), []events.Event{
		emit("u-super", events.UserRoleChanged, domain.KindUser, "u-viewer", map[string]any{
			events.KeyFromRole: "VIEWER",
			events.KeyToRole:   "TECHNICIAN",
		}),
		emit("u-super", events.TicketCreated, domain.KindTicket, "t1", nil),
	})

	got := hook.received()
	require.Len(t, got, 1)
	assert.Equal(t, events.UserRoleChanged, got[0].EventType)
	assert.Equal(t, []string{"u-viewer"}, got[0].Recipients)
	assert.Equal(t, 1, logs.FilterMessage("notification").Len())
}

func TestNotifierWebhookFailure(t *testing.T) {
	t.Parallel()

	hook := &webhook{code: http.StatusBadGateway}
	srv := httptest.NewServer(hook)
	defer srv.Close()

	n := notify.NewNotifier(config.NotifyConfig{WebhookURL: srv.URL}, zap.NewNop())
	err := n.Handle(context.Background(), emit("u-manager", events.ResourceUnassigned, domain.KindAsset, "a1", map[string]any{
		events.KeyPreviousAssigneeID: "u-tech",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNotifierWithoutWebhookOnlyLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	n := notify.NewNotifier(config.NotifyConfig{Enabled: true}, zap.New(core))
	err := n.Handle(context.Background(), emit("u-manager", events.ResourceAssigned, domain.KindTicket, "t1", map[string]any{
		events.KeyAssigneeID: "u-tech",
	}))
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notification", logs.All()[0].Message)
}

func TestNotifierRejectsUnsupportedWebhookScheme(t *testing.T) {
	t.Parallel()

	n := notify.NewNotifier(config.NotifyConfig{WebhookURL: "ftp://hooks.local/itops"}, zap.NewNop())
	evt := emit("u-manager", events.ResourceAssigned, domain.KindTicket, "t1", map[string]any{
		events.KeyAssigneeID: "u-tech",
	})
	for i := 0; i < 3; i++ {
		err := n.Handle(context.Background(), evt)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse webhook url")
	}
}
