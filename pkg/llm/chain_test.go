package llm

import (
	"context"
	"errors"
	"testing"

	"store-locator-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	out   string
	err   error
	calls int
}

func (f *fakeProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	f.calls++
	return f.out, f.err
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return f.Chat(ctx, []Message{{Role: "user", Content: prompt}}, options...)
}

func TestChainFirstSuccessShortCircuits(t *testing.T) {
	local := &fakeProvider{out: "local"}
	hosted := &fakeProvider{out: "hosted"}
	chain := NewChain(logger.NewNop(), Named{Name: "local", Provider: local}, Named{Name: "hosted", Provider: hosted})

	out, err := chain.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "local", out)
	assert.Equal(t, 0, hosted.calls)
}

func TestChainFallsBack(t *testing.T) {
	local := &fakeProvider{err: errors.New("connection refused")}
	hosted := &fakeProvider{out: "hosted"}
	chain := NewChain(logger.NewNop(), Named{Name: "local", Provider: local}, Named{Name: "hosted", Provider: hosted})

	out, err := chain.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hosted", out)
	assert.Equal(t, 1, local.calls)
}

func TestChainRejectedAnswerMovesOn(t *testing.T) {
	local := &fakeProvider{out: "not json"}
	hosted := &fakeProvider{out: "{}"}
	chain := NewChain(logger.NewNop(), Named{Name: "local", Provider: local}, Named{Name: "hosted", Provider: hosted})

	out, err := chain.ChatAccept(context.Background(), []Message{{Role: "user", Content: "x"}}, func(s string) error {
		if s != "{}" {
			return errors.New("bad")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(logger.NewNop(),
		Named{Name: "a", Provider: &fakeProvider{err: errors.New("boom")}},
		Named{Name: "b", Provider: &fakeProvider{out: "   "}},
	)

	_, err := chain.Generate(context.Background(), "hi")
	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	assert.Len(t, chainErr.Attempts, 2)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain(logger.NewNop(), Named{Name: "nil"})
	assert.Equal(t, 0, chain.Len())

	_, err := chain.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestApplyOptions(t *testing.T) {
	o := Apply(Options{Temperature: 0.7, Model: "m"}, WithTemperature(0.1), WithJSON(), WithMaxTokens(50))
	assert.Equal(t, 0.1, o.Temperature)
	assert.True(t, o.JSON)
	assert.Equal(t, 50, o.MaxTokens)
	assert.Equal(t, "m", o.Model)
}
