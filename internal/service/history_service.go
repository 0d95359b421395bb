package service

import (
	"context"
	"errors"
	"fmt"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/entity"
	"store-locator-be/internal/repository/specification"
	"store-locator-be/internal/repository/unitofwork"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

// ErrHistoryDisabled is returned when no database is configured.
var ErrHistoryDisabled = errors.New("interaction log is not configured")

type IHistoryService interface {
	ListInteractions(ctx context.Context, q dto.InteractionHistoryQuery) (*dto.InteractionHistoryResponse, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory) IHistoryService {
	return &historyService{uowFactory: uowFactory}
}

// ListInteractions returns the newest matching interactions first, with the
// total count of matches ignoring paging.
func (s *historyService) ListInteractions(ctx context.Context, q dto.InteractionHistoryQuery) (*dto.InteractionHistoryResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrHistoryDisabled
	}

	var filters []specification.Specification
	if q.SessionID != "" {
		filters = append(filters, specification.BySession{SessionID: q.SessionID})
	}
	if q.Kind != "" {
		filters = append(filters, specification.ByKind{Kind: q.Kind})
	}
	if !q.Since.IsZero() {
		filters = append(filters, specification.Since{Time: q.Since})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).InteractionLogRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}

	page := append(append([]specification.Specification{}, filters...),
		specification.OrderBy{Field: "occurred_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	rows, err := repo.FindAll(ctx, page...)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}

	items := make([]dto.InteractionEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, toInteractionEvent(row))
	}
	return &dto.InteractionHistoryResponse{Total: total, Items: items}, nil
}

func toInteractionEvent(l *entity.InteractionLog) dto.InteractionEvent {
	ids := l.StoreIds
	if ids == nil {
		ids = []string{}
	}
	return dto.InteractionEvent{
		SessionID:   l.SessionId,
		Kind:        l.Kind,
		Lat:         l.Lat,
		Lng:         l.Lng,
		Keyword:     l.Keyword,
		Message:     l.Message,
		Reply:       l.Reply,
		Action:      l.Action,
		StoreIDs:    ids,
		SuggestedID: l.SuggestedId,
		Mock:        l.Mock,
		OccurredAt:  l.OccurredAt,
	}
}
