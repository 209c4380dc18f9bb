package api

import (
	"context"

	"factflow/internal/services"
	"factflow/internal/similarity"
	"factflow/internal/store"
	"factflow/internal/workflow"
)

// Duplicates ranks other work items by content similarity to id. A threshold
// of zero or less uses similarity.DefaultThreshold.
func (s *ItemService) Duplicates(ctx context.Context, id int64, threshold float64, limit int) (DuplicatesResponse, error) {
	if threshold > 1 {
		return DuplicatesResponse{}, services.Wrap(services.ErrValidation, "api", "duplicates", "threshold must be at most 1", nil)
	}
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}
	item, err := s.store.GetWorkItem(ctx, id)
	if err != nil {
		return DuplicatesResponse{}, err
	}
	if item == nil {
		return DuplicatesResponse{}, &workflow.Error{Kind: workflow.KindNotFound, WorkItemID: id}
	}
	all, err := s.store.ListWorkItems(ctx)
	if err != nil {
		return DuplicatesResponse{}, err
	}

	byID := make(map[int64]*store.WorkItem, len(all))
	docs := make([]similarity.Document, 0, len(all))
	for _, other := range all {
		if other.ID == id {
			continue
		}
		byID[other.ID] = other
		docs = append(docs, similarity.Document{ID: other.ID, Text: other.Content})
	}

	resp := DuplicatesResponse{WorkItemID: id, Threshold: threshold, Candidates: []DuplicateCandidate{}}
	for _, match := range similarity.Rank(item.Content, docs, threshold, limit) {
		other := byID[match.ID]
		resp.Candidates = append(resp.Candidates, DuplicateCandidate{
			ID:      other.ID,
			Stage:   string(other.Stage),
			Content: other.Content,
			Score:   match.Score,
		})
	}
	return resp, nil
}
