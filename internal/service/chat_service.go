package service

import (
	"context"

	"store-locator-be/internal/dto"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/session"
	"store-locator-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

type IChatService interface {
	SendChat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	finder     StoreFinder
	classifier IntentClassifier
	generator  AnswerGenerator
	sessions   *session.Manager
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewChatService(
	finder StoreFinder,
	classifier IntentClassifier,
	generator AnswerGenerator,
	sessions *session.Manager,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		finder:     finder,
		classifier: classifier,
		generator:  generator,
		sessions:   sessions,
		publisher:  publisher,
		logger:     log,
	}
}

// SendChat runs one chat turn: load the session, classify, optionally
// re-search, answer, resolve the suggestion and save. Only a session store
// failure produces an error.
func (s *chatService) SendChat(ctx context.Context, sessionID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	ctx, span := otel.Tracer("chat").Start(ctx, "chat.turn")
	defer span.End()

	// RECEIVED
	sc, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("CHAT", "Message received", map[string]interface{}{
		"session_id":   sessionID,
		"stores":       len(sc.Stores),
		"has_location": sc.HasLocation(),
	})

	// CLASSIFIED
	in := s.classifier.Classify(ctx, req.Message)
	s.logger.Info("CHAT", "Intent classified", map[string]interface{}{
		"session_id": sessionID,
		"action":     in.Action,
		"keyword":    in.Keyword,
	})

	action := dto.ChatActionChat
	stores := sc.Stores

	// RESEARCHED
	if in.IsSearch() {
		switch {
		case !sc.HasLocation():
			s.logger.Info("CHAT", "Search skipped, location unknown", map[string]interface{}{"session_id": sessionID})
		default:
			found := s.finder.SearchByKeyword(ctx, sc.Location.Lat, sc.Location.Lng, in.Keyword, 0)
			if len(found) > 0 {
				stores = found
				action = dto.ChatActionUpdateMap
				s.logger.Info("CHAT", "Stores replaced by keyword search", map[string]interface{}{
					"session_id": sessionID,
					"keyword":    in.Keyword,
					"stores":     len(found),
				})
			} else {
				s.logger.Warn("CHAT", "Keyword search empty, keeping current stores", map[string]interface{}{
					"session_id": sessionID,
					"keyword":    in.Keyword,
				})
			}
		}
	}
	span.SetAttributes(attribute.String("action", action))

	// ANSWERED
	ans := s.generator.Answer(ctx, req.Message, stores)

	var suggested *store.Store
	if ans.BestStoreID != nil {
		if match, ok := store.FindByID(stores, *ans.BestStoreID); ok {
			suggested = match
		} else {
			s.logger.Warn("CHAT", "Suggested store not in current list", map[string]interface{}{
				"session_id": sessionID,
				"store_id":   *ans.BestStoreID,
			})
		}
	}

	// RESPONDED
	sc.Stores = store.CloneAll(stores)
	if err := s.sessions.Save(ctx, sessionID, sc); err != nil {
		return nil, err
	}
	s.logger.Info("CHAT", "Reply sent", map[string]interface{}{
		"session_id": sessionID,
		"action":     action,
		"suggested":  suggested != nil,
	})

	evt := dto.InteractionEvent{
		SessionID: sessionID,
		Kind:      dto.InteractionChat,
		Message:   req.Message,
		Reply:     ans.Reply,
		Action:    action,
		StoreIDs:  storeIDs(stores),
	}
	if sc.Location != nil {
		evt.Lat, evt.Lng = &sc.Location.Lat, &sc.Location.Lng
	}
	if suggested != nil {
		evt.SuggestedID = suggested.ID
	}
	if s.publisher != nil {
		s.publisher.Publish(ctx, evt)
	}

	return &dto.ChatResponse{
		Reply:          ans.Reply,
		Action:         action,
		Stores:         stores,
		SuggestedStore: suggested,
	}, nil
}
