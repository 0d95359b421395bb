package dto

import (
	"time"

	"store-locator-be/pkg/store"
)

type SearchNearbyRequest struct {
	Lat float64 `query:"lat" validate:"latitude"`
	Lng float64 `query:"lng" validate:"longitude"`
}

type SearchKeywordRequest struct {
	Lat     float64 `query:"lat" validate:"latitude"`
	Lng     float64 `query:"lng" validate:"longitude"`
	Keyword string  `query:"keyword" validate:"required,max=60"`
}

type SearchResponse struct {
	Stores []store.Store `json:"stores"`
}

type SessionResponse struct {
	Location  *store.Location `json:"location"`
	Stores    []store.Store   `json:"stores"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}
