package dto

import "store-locator-be/pkg/store"

const (
	ChatActionChat      = "chat"
	ChatActionUpdateMap = "update_map"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type ChatResponse struct {
	Reply          string        `json:"reply"`
	Action         string        `json:"action"` // "chat" | "update_map"
	Stores         []store.Store `json:"stores"`
	SuggestedStore *store.Store  `json:"suggested_store"`
}
