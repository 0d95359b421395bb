package mapper

import (
	"encoding/json"

	"store-locator-be/internal/entity"
	"store-locator-be/internal/model"

	"gorm.io/datatypes"
)

type InteractionMapper struct{}

func NewInteractionMapper() *InteractionMapper {
	return &InteractionMapper{}
}

func (m *InteractionMapper) ToModel(e *entity.InteractionLog) *model.InteractionLog {
	if e == nil {
		return nil
	}

	ids := e.StoreIds
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)

	return &model.InteractionLog{
		Id:          e.Id,
		SessionId:   e.SessionId,
		Kind:        e.Kind,
		Lat:         e.Lat,
		Lng:         e.Lng,
		Keyword:     e.Keyword,
		Message:     e.Message,
		Reply:       e.Reply,
		Action:      e.Action,
		StoreIds:    datatypes.JSON(raw),
		SuggestedId: e.SuggestedId,
		Mock:        e.Mock,
		OccurredAt:  e.OccurredAt,
		CreatedAt:   e.CreatedAt,
	}
}

func (m *InteractionMapper) ToEntity(l *model.InteractionLog) *entity.InteractionLog {
	if l == nil {
		return nil
	}

	ids := []string{}
	if len(l.StoreIds) > 0 {
		_ = json.Unmarshal(l.StoreIds, &ids)
	}

	return &entity.InteractionLog{
		Id:          l.Id,
		SessionId:   l.SessionId,
		Kind:        l.Kind,
		Lat:         l.Lat,
		Lng:         l.Lng,
		Keyword:     l.Keyword,
		Message:     l.Message,
		Reply:       l.Reply,
		Action:      l.Action,
		StoreIds:    ids,
		SuggestedId: l.SuggestedId,
		Mock:        l.Mock,
		OccurredAt:  l.OccurredAt,
		CreatedAt:   l.CreatedAt,
	}
}
