package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"facilitybook/internal/config"
	"facilitybook/internal/domain"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []*models.Booking{{
	ID:          1,
	RoomID:      "L201",
	UserName:    "Fe Faculty",
	UserRole:    models.RoleFaculty,
	Category:    models.CategoryClass,
	Description: "Algorithms",
	Date:        "2024-06-10",
	StartTime:   9,
	EndTime:     11,
	Status:      models.StatusApproved,
}}

func newGenerator(t *testing.T, handler http.HandlerFunc) *OpenAIGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := zerolog.New(io.Discard)
	return NewOpenAIGenerator(config.ReportConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1/",
		Model:   "test-model",
	}, []models.Room{{ID: "L201", Name: "Lab 201"}}, &logger)
}

func TestSummarize(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Contains(t, body.Messages[1].Content, "2024-06-10 Lab 201 9:00-11:00 | Class | Algorithms | Fe Faculty (Faculty) | Approved")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1718000000,
			"model": "test-model",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  Lab 201 hosted one class.  "}}]
		}`))
	})

	text, err := gen.Summarize(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, "Lab 201 hosted one class.", text)
}

func TestSummarizeAPIError(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	})

	_, err := gen.Summarize(context.Background(), sample)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "401")
}

func TestSummarizeEmptyChoices(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`))
	})

	_, err := gen.Summarize(context.Background(), sample)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestSummarizeHonorsContext(t *testing.T) {
	gen := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gen.Summarize(ctx, sample)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
