package api

import (
	"context"
	"strings"

	"factflow/internal/access"
	"factflow/internal/lifecycle"
	"factflow/internal/services"
	"factflow/internal/store"
	"factflow/internal/workflow"
)

// ItemStore abstracts the persistence the API reads and the intake calls write.
type ItemStore interface {
	CreateWorkItem(ctx context.Context, content string) (*store.WorkItem, error)
	GetWorkItem(ctx context.Context, id int64) (*store.WorkItem, error)
	ListWorkItems(ctx context.Context, stages ...lifecycle.Stage) ([]*store.WorkItem, error)
	AddClaim(ctx context.Context, workItemID int64, text string) (*store.Claim, error)
	Claims(ctx context.Context, workItemID int64) ([]store.Claim, error)
	FactChecks(ctx context.Context, workItemID int64) ([]store.FactCheck, error)
	Stats(ctx context.Context) (map[lifecycle.Stage]int, error)
}

// Engine is the subset of the workflow engine the API drives.
type Engine interface {
	Transition(ctx context.Context, req workflow.Request) (*store.WorkItem, error)
	ValidTransitions(from lifecycle.Stage) []lifecycle.Stage
	History(ctx context.Context, workItemID int64) ([]store.TransitionRecord, error)
	Table() lifecycle.Table
	Permissions() access.Permissions
}

// ItemService exposes work item operations returning API DTOs.
type ItemService struct {
	store  ItemStore
	engine Engine
}

// NewItemService constructs an ItemService.
func NewItemService(st ItemStore, engine Engine) *ItemService {
	if st == nil || engine == nil {
		return nil
	}
	return &ItemService{store: st, engine: engine}
}

// Create stores a new submitted work item with optional claims.
func (s *ItemService) Create(ctx context.Context, req CreateItemRequest) (*WorkItem, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "create item", "content is required", nil)
	}
	item, err := s.store.CreateWorkItem(ctx, req.Content)
	if err != nil {
		return nil, err
	}
	for _, text := range req.Claims {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, err := s.store.AddClaim(ctx, item.ID, text); err != nil {
			return nil, err
		}
	}
	return s.Describe(ctx, item.ID)
}

// AddClaim links a claim to an existing work item.
func (s *ItemService) AddClaim(ctx context.Context, workItemID int64, text string) (*Claim, error) {
	if strings.TrimSpace(text) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "add claim", "claim text is required", nil)
	}
	item, err := s.store.GetWorkItem(ctx, workItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &workflow.Error{Kind: workflow.KindNotFound, WorkItemID: workItemID}
	}
	claim, err := s.store.AddClaim(ctx, workItemID, text)
	if err != nil {
		return nil, err
	}
	dto := FromClaim(*claim)
	return &dto, nil
}

// List returns work items filtered by stage.
func (s *ItemService) List(ctx context.Context, stages ...lifecycle.Stage) ([]WorkItem, error) {
	items, err := s.store.ListWorkItems(ctx, stages...)
	if err != nil {
		return nil, err
	}
	return FromWorkItems(items), nil
}

// Describe fetches a work item with its claims, fact checks and next stages.
func (s *ItemService) Describe(ctx context.Context, id int64) (*WorkItem, error) {
	item, err := s.store.GetWorkItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &workflow.Error{Kind: workflow.KindNotFound, WorkItemID: id}
	}
	claims, err := s.store.Claims(ctx, id)
	if err != nil {
		return nil, err
	}
	checks, err := s.store.FactChecks(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromWorkItem(item)
	dto.ValidTransitions = stageStrings(s.engine.ValidTransitions(item.Stage))
	dto.Claims = FromClaims(claims)
	dto.FactChecks = FromFactChecks(checks)
	return &dto, nil
}

// Transition moves a work item on behalf of actorID.
// Target names are parsed like the CLI does; an unparseable name is passed
// through so the engine reports it as an invalid transition.
func (s *ItemService) Transition(ctx context.Context, workItemID int64, actorID string, req TransitionRequest) (*WorkItem, error) {
	to, ok := lifecycle.ParseStage(req.To)
	if !ok {
		to = lifecycle.Stage(strings.TrimSpace(req.To))
	}
	item, err := s.engine.Transition(ctx, workflow.Request{
		WorkItemID: workItemID,
		To:         to,
		ActorID:    actorID,
		Reason:     strings.TrimSpace(req.Reason),
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	dto := FromWorkItem(item)
	dto.ValidTransitions = stageStrings(s.engine.ValidTransitions(item.Stage))
	return &dto, nil
}

// History returns a work item's audit trail.
func (s *ItemService) History(ctx context.Context, workItemID int64) (HistoryResponse, error) {
	records, err := s.engine.History(ctx, workItemID)
	if err != nil {
		return HistoryResponse{}, err
	}
	return HistoryResponse{WorkItemID: workItemID, Records: FromTransitionRecords(records)}, nil
}

// StageTransitions describes the edges leaving from.
func (s *ItemService) StageTransitions(from lifecycle.Stage) (StageTransitions, error) {
	if !from.Valid() {
		return StageTransitions{}, services.Wrap(services.ErrValidation, "api", "stage transitions", "unknown stage "+string(from), nil)
	}
	perms := s.engine.Permissions()
	targets := s.engine.ValidTransitions(from)
	out := StageTransitions{
		From:     string(from),
		Terminal: s.engine.Table().IsTerminal(from),
		Targets:  make([]StageTarget, 0, len(targets)),
	}
	for _, to := range targets {
		role, _ := perms.Required(from, to)
		out.Targets = append(out.Targets, StageTarget{Stage: string(to), RequiredRole: role.String()})
	}
	return out, nil
}

// Stats returns work item counts keyed by stage.
func (s *ItemService) Stats(ctx context.Context) (StatsResponse, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return StatsResponse{}, err
	}
	return StatsResponse{Counts: FromStats(stats)}, nil
}
