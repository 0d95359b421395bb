package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"store-locator-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"xin chào"}}]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("hf_test", srv.URL, "Qwen/Qwen2.5-7B-Instruct", time.Second)
	out, err := p.Generate(context.Background(), "hi", llm.WithJSON())

	require.NoError(t, err)
	assert.Equal(t, "xin chào", out)
	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestHuggingFaceEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("k", srv.URL, "m", time.Second)
	_, err := p.Generate(context.Background(), "hi")
	assert.Error(t, err)
}

func TestHuggingFaceAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	p := NewHuggingFaceProvider("k", srv.URL, "m", time.Second)
	_, err := p.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
