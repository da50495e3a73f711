package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itops-service/internal/authority"
	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
	"github.com/spec-kit/itops-service/internal/repository"
	apperrors "github.com/spec-kit/itops-service/pkg/util"
)

// PasswordHasher turns a plaintext password into a stored hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// IdempotencyStore reserves request keys. Claim reports false when the key is already held.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Recorder counts command outcomes.
type Recorder interface {
	RecordCommand(name, outcome string)
}

// Dependencies bundles collaborators for the executor.
type Dependencies struct {
	Store          repository.Store
	Dispatcher     *events.Dispatcher
	Hasher         PasswordHasher
	Logger         *zap.Logger
	Metrics        Recorder
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration
}

// Executor runs commands.
type Executor struct {
	store       repository.Store
	dispatcher  *events.Dispatcher
	hasher      PasswordHasher
	logger      *zap.Logger
	metrics     Recorder
	idempotency IdempotencyStore
	idemTTL     time.Duration
	newID       func() string
	now         func() time.Time
}

// NewExecutor builds an executor. Store, Dispatcher and Hasher are required.
func NewExecutor(deps Dependencies) *Executor {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Executor{
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		hasher:      deps.Hasher,
		logger:      logger,
		metrics:     deps.Metrics,
		idempotency: deps.Idempotency,
		idemTTL:     ttl,
		newID:       func() string { return uuid.NewString() },
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type idempotencyKey struct{}

// WithIdempotencyKey attaches a client-supplied request key to ctx.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey{}, key)
}

func idempotencyKeyFrom(ctx context.Context) string {
	key, _ := ctx.Value(idempotencyKey{}).(string)
	return key
}

// Execute validates, authorizes and applies cmd on behalf of actor.
func (e *Executor) Execute(ctx context.Context, actor domain.Actor, cmd Command) (res Result, err error) {
	if cmd == nil {
		return Result{}, apperrors.NewValidationError("command is required", nil)
	}
	defer func() { e.record(actor, cmd, err) }()

	if err := cmd.Validate(); err != nil {
		return Result{}, err
	}

	release, err := e.claim(ctx, actor, cmd)
	if err != nil {
		return Result{}, err
	}

	res, err = e.inTx(ctx, actor, func(s *session) (Result, error) {
		return e.dispatch(ctx, s, cmd)
	})
	if err != nil && release != nil {
		release()
	}
	return res, err
}

func (e *Executor) dispatch(ctx context.Context, s *session, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case CreateTicket:
		return e.createTicket(ctx, s, c)
	case UpdateTicket:
		return e.updateTicket(ctx, s, c)
	case DeleteTicket:
		return e.deleteTicket(ctx, s, c)
	case AssignTicket:
		return e.assignTicket(ctx, s, c)
	case UnassignTicket:
		return e.unassignTicket(ctx, s, c)
	case ResolveTicket:
		return e.resolveTicket(ctx, s, c)
	case ReopenTicket:
		return e.reopenTicket(ctx, s, c)
	case CloseTicket:
		return e.closeTicket(ctx, s, c)
	case CreateAsset:
		return e.createAsset(ctx, s, c)
	case UpdateAsset:
		return e.updateAsset(ctx, s, c)
	case DeleteAsset:
		return e.deleteAsset(ctx, s, c)
	case AssignAsset:
		return e.assignAsset(ctx, s, c)
	case UnassignAsset:
		return e.unassignAsset(ctx, s, c)
	case CreateProject:
		return e.createProject(ctx, s, c)
	case UpdateProject:
		return e.updateProject(ctx, s, c)
	case DeleteProject:
		return e.deleteProject(ctx, s, c)
	case AssignProject:
		return e.assignProject(ctx, s, c)
	case UnassignProject:
		return e.unassignProject(ctx, s, c)
	case CreateUser:
		return e.createUser(ctx, s, c)
	case UpdateUser:
		return e.updateUser(ctx, s, c)
	case DeleteUser:
		return e.deleteUser(ctx, s, c)
	case ChangeUserRole:
		return e.changeUserRole(ctx, s, c)
	default:
		return Result{}, apperrors.NewValidationError(fmt.Sprintf("unsupported command %s", cmd.CommandName()), nil)
	}
}

// inTx runs fn in a fresh transaction with its own event buffer. The buffer
// is flushed through the dispatcher only if the commit succeeds.
func (e *Executor) inTx(ctx context.Context, actor domain.Actor, fn func(*session) (Result, error)) (Result, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return Result{}, mapError(err)
	}
	s := &session{tx: tx, buf: events.NewBuffer(actor.ID), actor: actor, now: e.now(), newID: e.newID}
	s.buf.FlushOnCommit(tx, e.dispatcher)

	committed := false
	defer func() {
		if !committed {
			s.buf.Discard()
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				e.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	res, err := fn(s)
	if err != nil {
		return Result{}, mapError(err)
	}
	res.Events = s.buf.Events()
	if err := tx.Commit(ctx); err != nil {
		return Result{}, mapError(err)
	}
	committed = true
	return res, nil
}

// read runs fn in a transaction that is always rolled back.
func (e *Executor) read(ctx context.Context, actor domain.Actor, fn func(*session) error) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	s := &session{tx: tx, buf: events.NewBuffer(actor.ID), actor: actor, now: e.now(), newID: e.newID}
	return mapError(fn(s))
}

func (e *Executor) claim(ctx context.Context, actor domain.Actor, cmd Command) (func(), error) {
	key := idempotencyKeyFrom(ctx)
	if key == "" || e.idempotency == nil {
		return nil, nil
	}
	full := fmt.Sprintf("idem:%s:%s:%s", actor.ID, cmd.CommandName(), key)
	ok, err := e.idempotency.Claim(ctx, full, e.idemTTL)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("claim idempotency key: %w", err))
	}
	if !ok {
		return nil, apperrors.NewConflict("duplicate request", map[string]any{"idempotency_key": key})
	}
	return func() {
		if err := e.idempotency.Release(context.WithoutCancel(ctx), full); err != nil {
			e.logger.Warn("release idempotency key", zap.String("key", full), zap.Error(err))
		}
	}, nil
}

func (e *Executor) record(actor domain.Actor, cmd Command, err error) {
	outcome := "OK"
	if err != nil {
		outcome = apperrors.ToDomainError(err).Code
	}
	if e.metrics != nil {
		e.metrics.RecordCommand(cmd.CommandName(), outcome)
	}
	fields := []zap.Field{
		zap.String("command", cmd.CommandName()),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
		zap.String("outcome", outcome),
	}
	switch {
	case err == nil:
		e.logger.Debug("command executed", fields...)
	case outcome == apperrors.CodeInternal:
		e.logger.Error("command failed", append(fields, zap.Error(err))...)
	default:
		e.logger.Info("command rejected", append(fields, zap.Error(err))...)
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var de *apperrors.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("resource", nil)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("resource already exists", nil)
	default:
		return apperrors.NewInternalError(err)
	}
}

// session is the per-command transactional context.
type session struct {
	tx    repository.Tx
	buf   *events.Buffer
	actor domain.Actor
	now   time.Time
	newID func() string
}

func (s *session) emit(eventType events.EventType, kind domain.ResourceKind, id string, payload map[string]any) {
	if payload == nil {
		payload = map[string]any{}
	}
	payload[events.KeyActorID] = s.actor.ID
	s.buf.Emit(eventType, kind, id, payload)
}

// ownerRole resolves the current role of a resource owner. An owner whose
// account no longer exists is treated as SUPERADMIN, so only the override
// roles and the assignee keep rights over what they left behind.
func (s *session) ownerRole(ctx context.Context, ownerID string) (domain.Role, error) {
	owner, err := s.tx.Users().GetByID(ctx, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.RoleSuperAdmin, nil
	}
	if err != nil {
		return "", err
	}
	return owner.Role, nil
}

func (s *session) requireAssignee(ctx context.Context, id string) error {
	user, err := s.tx.Users().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewValidationError("assignee does not exist", map[string]any{"assignee_id": id})
	}
	if err != nil {
		return err
	}
	if user.Status != domain.UserStatusActive {
		return apperrors.NewValidationError("assignee is not active", map[string]any{"assignee_id": id})
	}
	return nil
}

func notFound(kind domain.ResourceKind, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
	}
	return err
}

// assignment adapts one resource for the shared assign and unassign flow.
type assignment struct {
	module  authority.Module
	res     domain.Resource
	slot    **string
	save    func(ctx context.Context) error
	display map[string]any
}

func (s *session) assign(ctx context.Context, a assignment, assigneeID string) error {
	if err := authority.AssertAssign(a.module, s.actor, a.res, assigneeID); err != nil {
		return err
	}
	if err := s.requireAssignee(ctx, assigneeID); err != nil {
		return err
	}
	if *a.slot != nil && **a.slot == assigneeID {
		return nil
	}
	var previous any
	if *a.slot != nil {
		previous = **a.slot
	}
	next := assigneeID
	*a.slot = &next
	if err := a.save(ctx); err != nil {
		return err
	}
	payload := map[string]any{
		events.KeyResourceType:       string(a.res.Kind),
		events.KeyResourceID:         a.res.ID,
		events.KeyAssigneeID:         assigneeID,
		events.KeyPreviousAssigneeID: previous,
	}
	for k, v := range a.display {
		payload[k] = v
	}
	s.emit(events.ResourceAssigned, a.res.Kind, a.res.ID, payload)
	return nil
}

func (s *session) unassign(ctx context.Context, a assignment) error {
	if a.res.Unassigned() {
		return apperrors.NewConflict(fmt.Sprintf("%s is not assigned", a.res.Kind), map[string]any{"id": a.res.ID})
	}
	if err := authority.AssertUnassign(a.module, s.actor, a.res); err != nil {
		return err
	}
	return s.release(ctx, a)
}

// release clears the assignee and emits resource.unassigned without any
// authority check. Callers have already authorized the enclosing command.
func (s *session) release(ctx context.Context, a assignment) error {
	previous := **a.slot
	*a.slot = nil
	if err := a.save(ctx); err != nil {
		return err
	}
	payload := map[string]any{
		events.KeyResourceType:       string(a.res.Kind),
		events.KeyResourceID:         a.res.ID,
		events.KeyPreviousAssigneeID: previous,
	}
	for k, v := range a.display {
		payload[k] = v
	}
	s.emit(events.ResourceUnassigned, a.res.Kind, a.res.ID, payload)
	return nil
}
