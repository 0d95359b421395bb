package mapper

import (
	"testing"
	"time"

	"store-locator-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractionMapperKeepsStoreIDs(t *testing.T) {
	m := NewInteractionMapper()
	lat := 10.77
	in := &entity.InteractionLog{
		Id:         uuid.New(),
		SessionId:  "s1",
		Kind:       "search",
		Lat:        &lat,
		StoreIds:   []string{"mock_0", "mock_1"},
		Mock:       true,
		OccurredAt: time.Now().UTC(),
	}

	row := m.ToModel(in)
	assert.JSONEq(t, `["mock_0","mock_1"]`, string(row.StoreIds))

	out := m.ToEntity(row)
	require.NotNil(t, out)
	assert.Equal(t, in.StoreIds, out.StoreIds)
	assert.Equal(t, in.Lat, out.Lat)
	assert.True(t, out.Mock)
}

func TestInteractionMapperNilIDsBecomeEmpty(t *testing.T) {
	m := NewInteractionMapper()
	row := m.ToModel(&entity.InteractionLog{Kind: "chat"})
	assert.Equal(t, "[]", string(row.StoreIds))
	assert.Empty(t, m.ToEntity(row).StoreIds)
	assert.Nil(t, m.ToEntity(nil))
}
