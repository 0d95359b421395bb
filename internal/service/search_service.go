package service

import (
	"context"
	"time"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/intent"
	"store-locator-be/pkg/agent/session"
	"store-locator-be/pkg/discovery"
	"store-locator-be/pkg/store"
)

type ISearchService interface {
	SearchNearby(ctx context.Context, sessionID string, req *dto.SearchNearbyRequest) (*dto.SearchResponse, error)
	SearchKeyword(ctx context.Context, sessionID string, req *dto.SearchKeywordRequest) (*dto.SearchResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
}

type searchService struct {
	finder    StoreFinder
	sessions  *session.Manager
	publisher IPublisherService
	logger    logger.ILogger
}

func NewSearchService(
	finder StoreFinder,
	sessions *session.Manager,
	publisher IPublisherService,
	log logger.ILogger,
) ISearchService {
	return &searchService{
		finder:    finder,
		sessions:  sessions,
		publisher: publisher,
		logger:    log,
	}
}

// SearchNearby runs discovery and makes the result the session's current list.
func (s *searchService) SearchNearby(ctx context.Context, sessionID string, req *dto.SearchNearbyRequest) (*dto.SearchResponse, error) {
	stores := s.finder.DiscoverNearby(ctx, req.Lat, req.Lng, 0, 0)
	mock := discovery.IsMock(stores)

	if err := s.sessions.RecordSearch(ctx, sessionID, req.Lat, req.Lng, store.CloneAll(stores)); err != nil {
		return nil, err
	}

	s.logger.Info("SEARCH", "Nearby search completed", map[string]interface{}{
		"session_id": sessionID,
		"stores":     len(stores),
		"mock":       mock,
	})

	s.publish(ctx, dto.InteractionEvent{
		SessionID: sessionID,
		Kind:      dto.InteractionSearch,
		Lat:       &req.Lat,
		Lng:       &req.Lng,
		StoreIDs:  storeIDs(stores),
		Mock:      mock,
	})

	return &dto.SearchResponse{Stores: stores}, nil
}

// SearchKeyword runs a targeted search. A non-empty result replaces the
// session list; an empty one leaves it as it was.
func (s *searchService) SearchKeyword(ctx context.Context, sessionID string, req *dto.SearchKeywordRequest) (*dto.SearchResponse, error) {
	keyword := intent.SanitizeKeyword(req.Keyword)
	if keyword == "" {
		return nil, ErrInvalidKeyword
	}

	stores := s.finder.SearchByKeyword(ctx, req.Lat, req.Lng, keyword, 0)
	if len(stores) > 0 {
		if err := s.sessions.RecordSearch(ctx, sessionID, req.Lat, req.Lng, store.CloneAll(stores)); err != nil {
			return nil, err
		}
	}

	s.logger.Info("SEARCH", "Keyword search completed", map[string]interface{}{
		"session_id": sessionID,
		"keyword":    keyword,
		"stores":     len(stores),
	})

	s.publish(ctx, dto.InteractionEvent{
		SessionID: sessionID,
		Kind:      dto.InteractionKeyword,
		Lat:       &req.Lat,
		Lng:       &req.Lng,
		Keyword:   keyword,
		StoreIDs:  storeIDs(stores),
	})

	return &dto.SearchResponse{Stores: stores}, nil
}

func (s *searchService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	found, err := s.sessions.Exists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}

	sc, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionResponse{Location: sc.Location, Stores: sc.Stores}
	if !sc.UpdatedAt.IsZero() {
		updated := sc.UpdatedAt.UTC().Truncate(time.Second)
		res.UpdatedAt = &updated
	}
	return res, nil
}

func (s *searchService) publish(ctx context.Context, evt dto.InteractionEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, evt)
	}
}
