package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/llm"
	"store-locator-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	out    string
	err    error
	prompt string
}

func (s *scripted) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if len(history) > 0 {
		s.prompt = history[len(history)-1].Content
	}
	return s.out, s.err
}

func (s *scripted) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newChain(providers ...*scripted) *llm.Chain {
	named := make([]llm.Named, len(providers))
	for i, p := range providers {
		named[i] = llm.Named{Name: fmt.Sprintf("p%d", i), Provider: p}
	}
	return llm.NewChain(logger.NewNop(), named...)
}

func stores(n int) []store.Store {
	out := make([]store.Store, n)
	for i := range out {
		out[i] = store.Store{
			ID:          fmt.Sprintf("%d", 100+i),
			Name:        fmt.Sprintf("Quán %d", i),
			TypeDisplay: "Quán Cafe",
			DistanceKm:  0.2 * float64(n-i),
			Rating:      4.5,
			OpenHour:    "07:00 - 23:00",
		}
	}
	return out
}

func TestAnswerParsesLenientJSON(t *testing.T) {
	p := &scripted{out: "Đây nhé:\n```json\n{\"reply\": \"Bạn ghé Quán 1 nhé!\", \"best_store_id\": \"101\"}\n```"}
	g := NewGenerator(newChain(p), logger.NewNop())

	got := g.Answer(context.Background(), "quán nào ngon?", stores(3))
	assert.Equal(t, "Bạn ghé Quán 1 nhé!", got.Reply)
	require.NotNil(t, got.BestStoreID)
	assert.Equal(t, "101", *got.BestStoreID)
}

func TestAnswerNumericAndNullIDs(t *testing.T) {
	p := &scripted{out: `{"reply":"ok","best_store_id":123456789}`}
	got := NewGenerator(newChain(p), logger.NewNop()).Answer(context.Background(), "x", stores(1))
	require.NotNil(t, got.BestStoreID)
	assert.Equal(t, "123456789", *got.BestStoreID)

	p = &scripted{out: `{"reply":"ok","best_store_id":null}`}
	got = NewGenerator(newChain(p), logger.NewNop()).Answer(context.Background(), "x", stores(1))
	assert.Nil(t, got.BestStoreID)
}

func TestAnswerKeepsUnknownID(t *testing.T) {
	p := &scripted{out: `{"reply":"ok","best_store_id":"ghost"}`}
	got := NewGenerator(newChain(p), logger.NewNop()).Answer(context.Background(), "x", stores(2))
	require.NotNil(t, got.BestStoreID)
	assert.Equal(t, "ghost", *got.BestStoreID)
}

func TestAnswerFallbackRecommendsNearest(t *testing.T) {
	local := &scripted{err: errors.New("down")}
	hosted := &scripted{out: "no json at all"}
	g := NewGenerator(newChain(local, hosted), logger.NewNop())

	list := stores(3) // distances 0.6, 0.4, 0.2
	got := g.Answer(context.Background(), "gần nhất?", list)
	assert.Equal(t, FallbackReply, got.Reply)
	require.NotNil(t, got.BestStoreID)
	assert.Equal(t, "102", *got.BestStoreID)
}

func TestAnswerFallbackEmptyList(t *testing.T) {
	g := NewGenerator(newChain(&scripted{err: errors.New("down")}), logger.NewNop())
	got := g.Answer(context.Background(), "hi", nil)
	assert.Equal(t, FallbackReplyEmpty, got.Reply)
	assert.Nil(t, got.BestStoreID)
}

func TestAnswerPromptIsBounded(t *testing.T) {
	p := &scripted{out: `{"reply":"ok"}`}
	NewGenerator(newChain(p), logger.NewNop()).Answer(context.Background(), "x", stores(12))

	assert.Equal(t, ContextLimit, strings.Count(p.prompt, "- id="))
	assert.Contains(t, p.prompt, "id=100")
	assert.NotContains(t, p.prompt, "id=108")
}
