package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"factflow/internal/access"
	"factflow/internal/dispatch"
	"factflow/internal/guard"
	"factflow/internal/identity"
	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/services"
	"factflow/internal/store"
	"factflow/internal/telemetry"
)

// Tx is the unit-of-work view the engine reads and writes through.
type Tx = store.Tx

// DataStore is the persistence the engine depends on. *store.Store satisfies it.
type DataStore interface {
	RunInTransaction(ctx context.Context, fn func(tx store.Tx) error) error
	GetWorkItem(ctx context.Context, id int64) (*store.WorkItem, error)
	History(ctx context.Context, workItemID int64) ([]store.TransitionRecord, error)
}

// Options wires the engine's collaborators. Nil tables and evaluators fall
// back to the defaults; Resolver is required.
type Options struct {
	Table       *lifecycle.Table
	Permissions *access.Permissions
	Guard       *guard.Evaluator
	Dispatcher  *dispatch.Dispatcher
	Resolver    identity.Resolver
	Logger      *slog.Logger
	Clock       func() time.Time
	Tracer      trace.Tracer
	Meter       metric.Meter
}

// Request asks for one work item to move to a new stage.
type Request struct {
	WorkItemID int64
	To         lifecycle.Stage
	ActorID    string
	Reason     string
	Metadata   map[string]any
}

// Engine performs stage transitions.
type Engine struct {
	store       DataStore
	table       lifecycle.Table
	permissions access.Permissions
	guard       *guard.Evaluator
	dispatcher  *dispatch.Dispatcher
	resolver    identity.Resolver
	logger      *slog.Logger
	now         func() time.Time

	tracer      trace.Tracer
	transitions metric.Int64Counter
	duration    metric.Float64Histogram
}

// New constructs an engine over st.
func New(st DataStore, opts Options) (*Engine, error) {
	if st == nil {
		return nil, errors.New("workflow: data store is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("workflow: identity resolver is required")
	}

	table := lifecycle.DefaultTable()
	if opts.Table != nil {
		table = *opts.Table
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("workflow: %w", err)
	}
	permissions := access.DefaultPermissions()
	if opts.Permissions != nil {
		permissions = *opts.Permissions
	}
	evaluator := opts.Guard
	if evaluator == nil {
		evaluator = guard.NewEvaluator(guard.DefaultKeywords())
	}
	logger := logging.NewComponentLogger(opts.Logger, "workflow")
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = dispatch.New(opts.Logger)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer("factflow/workflow")
	}
	meter := opts.Meter
	if meter == nil {
		meter = telemetry.Meter("factflow/workflow")
	}
	transitions, err := meter.Int64Counter("factflow.transitions",
		metric.WithDescription("Stage transitions attempted, by outcome"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("workflow: transitions counter: %w", err)
	}
	duration, err := meter.Float64Histogram("factflow.transition.duration",
		metric.WithDescription("Wall time of one transition unit of work"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("workflow: duration histogram: %w", err)
	}

	return &Engine{
		store:       st,
		table:       table,
		permissions: permissions,
		guard:       evaluator,
		dispatcher:  dispatcher,
		resolver:    opts.Resolver,
		logger:      logger,
		now:         clock,
		tracer:      tracer,
		transitions: transitions,
		duration:    duration,
	}, nil
}

// Table returns the stage graph the engine enforces.
func (e *Engine) Table() lifecycle.Table {
	return e.table
}

// Permissions returns the permission table the engine enforces.
func (e *Engine) Permissions() access.Permissions {
	return e.permissions
}

// Transition moves a work item to req.To on behalf of req.ActorID and returns
// the updated item.
//
// The caller's context may cancel the unit until the permission check passes.
// From then on the unit runs to commit or rollback regardless.
func (e *Engine) Transition(ctx context.Context, req Request) (*store.WorkItem, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = services.WithWorkItemID(ctx, req.WorkItemID)
	ctx = services.WithStage(ctx, string(req.To))
	ctx = services.WithActorID(ctx, req.ActorID)

	ctx, span := e.tracer.Start(ctx, "workflow.transition", trace.WithAttributes(
		attribute.Int64("factflow.work_item_id", req.WorkItemID),
		attribute.String("factflow.to_stage", string(req.To)),
		attribute.String("factflow.actor_id", req.ActorID),
	))
	defer span.End()

	logger := logging.WithContext(ctx, e.logger)
	logger.Debug("transition started")
	start := e.now()

	var (
		result *store.WorkItem
		from   lifecycle.Stage
	)
	caller := ctx
	err := e.store.RunInTransaction(context.WithoutCancel(ctx), func(tx store.Tx) error {
		var applyErr error
		result, from, applyErr = e.apply(caller, tx, req, logger)
		return applyErr
	})

	outcome := "ok"
	if err != nil {
		outcome = Classify(err)
	}
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("to_stage", string(req.To)),
	)
	elapsed := e.now().Sub(start)
	e.transitions.Add(ctx, 1, attrs)
	e.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		e.logFailure(logger, outcome, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("factflow.from_stage", string(from)))
	logger.Info("transition completed",
		logging.String(logging.FieldEventType, "transition_completed"),
		logging.String("from_stage", string(from)),
		logging.String("to_stage", string(result.Stage)),
		logging.Bool("requires_secondary_review", result.RequiresSecondaryReview),
		logging.Duration("elapsed", elapsed),
	)
	return result, nil
}

// apply runs the transition steps against tx. It may be called more than once
// when the store retries a busy database, so it keeps no state between calls.
func (e *Engine) apply(caller context.Context, tx store.Tx, req Request, logger *slog.Logger) (*store.WorkItem, lifecycle.Stage, error) {
	ctx := context.WithoutCancel(caller)

	item, err := tx.GetWorkItem(ctx, req.WorkItemID)
	if err != nil {
		return nil, "", fmt.Errorf("load work item %d: %w", req.WorkItemID, err)
	}
	if item == nil {
		return nil, "", &Error{Kind: KindNotFound, WorkItemID: req.WorkItemID, To: req.To, ActorID: req.ActorID}
	}

	actor, err := e.resolver.Resolve(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownActor) {
			return nil, "", &Error{
				Kind:       KindPermissionDenied,
				WorkItemID: item.ID,
				From:       item.Stage,
				To:         req.To,
				ActorID:    req.ActorID,
				Err:        err,
			}
		}
		return nil, "", fmt.Errorf("resolve actor %q: %w", req.ActorID, err)
	}

	from := item.Stage
	if !e.table.Allows(from, req.To) {
		return nil, "", &Error{
			Kind:       KindInvalidTransition,
			WorkItemID: item.ID,
			From:       from,
			To:         req.To,
			Role:       actor.Role,
			ActorID:    actor.ID,
		}
	}
	if !e.permissions.Permits(actor.Role, from, req.To) {
		return nil, "", &Error{
			Kind:       KindPermissionDenied,
			WorkItemID: item.ID,
			From:       from,
			To:         req.To,
			Role:       actor.Role,
			ActorID:    actor.ID,
		}
	}
	if err := caller.Err(); err != nil {
		return nil, "", err
	}

	item.Stage = req.To

	if req.To == lifecycle.StageAdminReview {
		decision := e.guard.Evaluate(guard.Subject{
			Content:                 item.Content,
			RequiresSecondaryReview: item.RequiresSecondaryReview,
			SecondaryReviewReason:   item.SecondaryReviewReason,
		})
		if decision.Changed {
			item.RequiresSecondaryReview = true
			item.SecondaryReviewReason = decision.Reason
			logger.Info("secondary review required",
				logging.String(logging.FieldEventType, "secondary_review_flagged"),
				logging.String("category", string(decision.Category)),
				logging.String("reason", decision.Reason),
			)
		}
	}

	var dispatched map[string]any
	if e.dispatcher.Triggers(req.To) {
		dispatched, err = e.dispatcher.Dispatch(ctx, tx, item.ID, req.To)
		if err != nil {
			return nil, "", fmt.Errorf("dispatch on entry to %s: %w", req.To, err)
		}
	}

	rec := &store.TransitionRecord{
		WorkItemID: item.ID,
		FromStage:  from,
		ToStage:    req.To,
		ActorID:    actor.ID,
		Reason:     req.Reason,
		Metadata:   mergeMetadata(req.Metadata, dispatched),
		CreatedAt:  e.now(),
	}
	if err := tx.AppendTransition(ctx, rec); err != nil {
		return nil, "", fmt.Errorf("append transition record: %w", err)
	}
	if err := tx.SaveWorkItemStage(ctx, item, from); err != nil {
		return nil, "", fmt.Errorf("persist work item %d: %w", item.ID, err)
	}
	return item, from, nil
}

func (e *Engine) logFailure(logger *slog.Logger, outcome string, err error) {
	var terr *Error
	if errors.As(err, &terr) {
		attrs := []logging.Attr{
			logging.String("from_stage", string(terr.From)),
			logging.String("to_stage", string(terr.To)),
			logging.Error(err),
		}
		if terr.Kind == KindPermissionDenied {
			attrs = append(attrs,
				logging.String("role", terr.Role.String()),
				logging.String(logging.FieldErrorHint, "ask an actor with a higher role to perform this transition"),
				logging.String(logging.FieldImpact, "work item stage unchanged"),
			)
			logging.WarnWithContext(logger, "transition denied", "transition_denied", attrs...)
			return
		}
		logger.Info("transition rejected", logging.Args(append(attrs, logging.String(logging.FieldEventType, "transition_"+outcome))...)...)
		return
	}
	if outcome == "conflict" {
		logging.WarnWithContext(logger, "transition lost a concurrent update", "transition_conflict",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "reload the work item and retry"),
			logging.String(logging.FieldImpact, "work item stage unchanged"),
		)
		return
	}
	logging.ErrorWithContext(logger, "transition failed", "transition_failed", logging.Error(err))
}

// mergeMetadata copies caller metadata and overlays dispatcher metadata, which
// wins on key collisions. It returns nil when both are empty.
func mergeMetadata(caller, dispatched map[string]any) map[string]any {
	if len(caller) == 0 && len(dispatched) == 0 {
		return nil
	}
	merged := make(map[string]any, len(caller)+len(dispatched))
	for k, v := range caller {
		merged[k] = v
	}
	for k, v := range dispatched {
		merged[k] = v
	}
	return merged
}

// ValidTransitions lists the stages reachable from the given stage in one
// step, in stage order.
func (e *Engine) ValidTransitions(from lifecycle.Stage) []lifecycle.Stage {
	return e.table.Targets(from)
}

// History returns the work item's transition records, oldest first.
func (e *Engine) History(ctx context.Context, workItemID int64) ([]store.TransitionRecord, error) {
	if _, err := e.load(ctx, workItemID); err != nil {
		return nil, err
	}
	records, err := e.store.History(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load history for work item %d: %w", workItemID, err)
	}
	return records, nil
}

// CurrentStage returns the work item's stage.
func (e *Engine) CurrentStage(ctx context.Context, workItemID int64) (lifecycle.Stage, error) {
	item, err := e.load(ctx, workItemID)
	if err != nil {
		return "", err
	}
	return item.Stage, nil
}

func (e *Engine) load(ctx context.Context, workItemID int64) (*store.WorkItem, error) {
	item, err := e.store.GetWorkItem(ctx, workItemID)
	if err != nil {
		return nil, fmt.Errorf("load work item %d: %w", workItemID, err)
	}
	if item == nil {
		return nil, &Error{Kind: KindNotFound, WorkItemID: workItemID}
	}
	return item, nil
}
