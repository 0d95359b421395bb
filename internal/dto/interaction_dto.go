package dto

import "time"

// Interaction event kinds
const (
	InteractionSearch  = "search"
	InteractionKeyword = "keyword"
	InteractionChat    = "chat"
)

// InteractionEvent is published after every search or chat turn.
type InteractionEvent struct {
	SessionID   string    `json:"session_id"`
	Kind        string    `json:"kind"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Keyword     string    `json:"keyword,omitempty"`
	Message     string    `json:"message,omitempty"`
	Reply       string    `json:"reply,omitempty"`
	Action      string    `json:"action,omitempty"`
	StoreIDs    []string  `json:"store_ids"`
	SuggestedID string    `json:"suggested_id,omitempty"`
	Mock        bool      `json:"mock"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// InteractionHistoryQuery selects logged interactions. Zero values mean no filter.
type InteractionHistoryQuery struct {
	SessionID string
	Kind      string
	Since     time.Time
	Limit     int
	Offset    int
}

type SessionHistoryRequest struct {
	Kind   string `query:"kind" validate:"omitempty,oneof=search keyword chat"`
	Limit  int    `query:"limit" validate:"gte=0,lte=200"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type InteractionHistoryResponse struct {
	Total int64              `json:"total"`
	Items []InteractionEvent `json:"items"`
}
