package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(LLMConfig{BaseURL: "http://gpu-box:11434/"})
	assert.Equal(t, DefaultLLMModel, s.ModelName())
	assert.Equal(t, "http://gpu-box:11434", s.baseURL)
}

func TestGenerate_SendsPersonaAndOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "You are Campus Genie."}, req.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "Hall 12 rent?"}, req.Messages[1])
		require.NotNil(t, req.Options)
		assert.Equal(t, 64, req.Options.NumPredict)
		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Role: "assistant", Content: "$400"}, Done: true})
	}))
	defer srv.Close()

	out, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), driven.GenerateRequest{
		System:  "You are Campus Genie.",
		Prompt:  "Hall 12 rent?",
		Options: driven.GenerateOptions{MaxTokens: 64},
	})
	require.NoError(t, err)
	assert.Equal(t, "$400", out)
}

func TestGenerate_NoOptionsWithoutSampling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Options)
		assert.Len(t, req.Messages, 1)
		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "ok"}})
	}))
	defer srv.Close()

	_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), driven.GenerateRequest{Prompt: "q"})
	assert.NoError(t, err)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		auth   bool
	}{
		{"unauthorized", http.StatusUnauthorized, "denied", true},
		{"forbidden", http.StatusForbidden, "denied", true},
		{"server error", http.StatusInternalServerError, "oops", false},
		{"empty answer", http.StatusOK, `{"message":{"role":"assistant","content":"  "}}`, false},
		{"model error", http.StatusOK, `{"error":"model not found"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewLLMService(LLMConfig{BaseURL: srv.URL}).Generate(context.Background(), driven.GenerateRequest{Prompt: "q"})
			require.Error(t, err)
			assert.Equal(t, tt.auth, errors.Is(err, domain.ErrAuthFailure))
		})
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: srv.URL}).Ping(context.Background()))
}
