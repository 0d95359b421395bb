package service

import (
	"context"
	"errors"

	"store-locator-be/pkg/agent/intent"
	"store-locator-be/pkg/agent/response"
	"store-locator-be/pkg/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidKeyword  = errors.New("keyword has no searchable characters")
)

// StoreFinder is the discovery pipeline as the services use it.
type StoreFinder interface {
	DiscoverNearby(ctx context.Context, lat, lng float64, radius, maxResults int) []store.Store
	SearchByKeyword(ctx context.Context, lat, lng float64, keyword string, radius int) []store.Store
}

type IntentClassifier interface {
	Classify(ctx context.Context, message string) intent.Intent
}

type AnswerGenerator interface {
	Answer(ctx context.Context, message string, stores []store.Store) response.Answer
}

func storeIDs(stores []store.Store) []string {
	ids := make([]string, len(stores))
	for i, s := range stores {
		ids[i] = s.ID
	}
	return ids
}
