package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myenglish-exercises/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// messageBody wraps text in a Messages API response.
func messageBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-test",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]any{{"type": "text", "text": text}},
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
	return string(b)
}

func newTestServer(t *testing.T, status int, body string, gotPrompt *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if gotPrompt != nil {
			var req struct {
				Messages []struct {
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
				*gotPrompt = req.Messages[0].Content[0].Text
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(srv *httptest.Server) *Provider {
	return NewProvider(newTestLogger(), Config{
		APIKey:  "test-key",
		Model:   "claude-test",
		BaseURL: srv.URL,
	})
}

func TestProvider_GenerateSentence_Reorder(t *testing.T) {
	t.Parallel()

	var prompt string
	srv := newTestServer(t, http.StatusOK,
		messageBody("Here you go:\n{\"sentence\": \"Ik koop morgen een fiets.\", \"word\": \"fiets\", \"translation\": \"I will buy a bike tomorrow.\"}"),
		&prompt)

	got, err := newTestProvider(srv).GenerateSentence(context.Background(), provider.SentenceRequest{
		Word:        "fiets",
		Translation: "bike",
		Language:    "Dutch",
		Context:     "transport",
	})

	require.NoError(t, err)
	assert.Equal(t, "Ik koop morgen een fiets.", got.Sentence)
	assert.Equal(t, "fiets", got.Word)
	assert.Empty(t, got.Correct)
	assert.Equal(t, "I will buy a bike tomorrow.", got.Translation)

	assert.Contains(t, prompt, `"fiets"`)
	assert.Contains(t, prompt, "Dutch")
	assert.Contains(t, prompt, "transport")
	assert.NotContains(t, prompt, "mistake")
}

func TestProvider_GenerateSentence_FindError(t *testing.T) {
	t.Parallel()

	var prompt string
	srv := newTestServer(t, http.StatusOK,
		messageBody(`{"sentence": "She go to school every day.", "error_word": "go", "correct": "She goes to school every day.", "explanation": "Third person singular takes -s.", "translation": "Zij gaat elke dag naar school."}`),
		&prompt)

	got, err := newTestProvider(srv).GenerateSentence(context.Background(), provider.SentenceRequest{
		Word:      "school",
		Language:  "English",
		FindError: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "She go to school every day.", got.Sentence)
	assert.Equal(t, "go", got.Word)
	assert.Equal(t, "She goes to school every day.", got.Correct)
	assert.Equal(t, "Third person singular takes -s.", got.Explanation)
	assert.Contains(t, prompt, "mistake")
}

func TestProvider_GenerateSentence_BadResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		findError bool
	}{
		{"no json", "Sorry, I cannot help with that.", false},
		{"broken json", `{"sentence": "Ik ga`, false},
		{"empty sentence", `{"sentence": "  ", "word": "x"}`, false},
		{"find error without correction", `{"sentence": "Ik gaan naar huis.", "error_word": "gaan"}`, true},
		{"empty text", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, http.StatusOK, messageBody(tt.text), nil)
			_, err := newTestProvider(srv).GenerateSentence(context.Background(), provider.SentenceRequest{
				Word: "huis", Language: "Dutch", FindError: tt.findError,
			})
			assert.ErrorIs(t, err, ErrBadResponse)
		})
	}
}

func TestProvider_GenerateSentence_APIError(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, http.StatusBadRequest,
		`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`, nil)

	_, err := newTestProvider(srv).GenerateSentence(context.Background(), provider.SentenceRequest{Word: "huis", Language: "Dutch"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrBadResponse))
	assert.True(t, strings.Contains(err.Error(), "huis"))
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare", `{"a":1}`, `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"nested", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, false},
		{"none", "nothing here", "", true},
		{"reversed braces", "} {", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractJSON(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
