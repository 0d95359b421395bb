package entity

import (
	"time"

	"github.com/google/uuid"
)

type InteractionLog struct {
	Id          uuid.UUID
	SessionId   string
	Kind        string
	Lat         *float64
	Lng         *float64
	Keyword     string
	Message     string
	Reply       string
	Action      string
	StoreIds    []string
	SuggestedId string
	Mock        bool
	OccurredAt  time.Time
	CreatedAt   time.Time
}
