package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/myenglish-exercises/internal/provider"
)

// ErrBadResponse is returned when the model output cannot be used.
var ErrBadResponse = errors.New("llm: unusable response")

// Config holds the generator settings.
type Config struct {
	APIKey     string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	MaxRetries int
	BaseURL    string // empty means the public API
}

type messagesAPI interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Provider writes exercise sentences with Claude.
type Provider struct {
	messages  messagesAPI
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider backed by the Anthropic Messages API.
func NewProvider(logger *slog.Logger, cfg Config) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}

	return &Provider{
		messages:  &client.Messages,
		model:     cfg.Model,
		maxTokens: maxTokens,
		log:       logger.With("adapter", "llm"),
	}
}

// GenerateSentence asks the model for one exercise sentence.
func (p *Provider) GenerateSentence(ctx context.Context, req provider.SentenceRequest) (*provider.SentenceResult, error) {
	p.log.DebugContext(ctx, "llm request",
		slog.String("word", req.Word),
		slog.String("language", req.Language),
		slog.Bool("find_error", req.FindError),
	)

	start := time.Now()
	msg, err := p.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: messages call for %q: %w", req.Word, err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		text.WriteString(block.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: empty response for %q", ErrBadResponse, req.Word)
	}

	result, err := parseResponse(text.String(), req.FindError)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrBadResponse, req.Word, err)
	}

	p.log.DebugContext(ctx, "llm response",
		slog.String("word", req.Word),
		slog.Duration("took", time.Since(start)),
	)
	return result, nil
}

type apiSentence struct {
	Sentence    string `json:"sentence"`
	Word        string `json:"word"`
	ErrorWord   string `json:"error_word"`
	Correct     string `json:"correct"`
	Explanation string `json:"explanation"`
	Translation string `json:"translation"`
}

func parseResponse(s string, findError bool) (*provider.SentenceResult, error) {
	raw, err := extractJSON(s)
	if err != nil {
		return nil, err
	}

	var out apiSentence
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out.Sentence = strings.TrimSpace(out.Sentence)
	out.Correct = strings.TrimSpace(out.Correct)
	if out.Sentence == "" {
		return nil, errors.New("sentence missing")
	}

	result := &provider.SentenceResult{
		Sentence:    out.Sentence,
		Word:        out.Word,
		Explanation: out.Explanation,
		Translation: out.Translation,
	}
	if findError {
		if out.Correct == "" {
			return nil, errors.New("correct sentence missing")
		}
		result.Word = out.ErrorWord
		result.Correct = out.Correct
	}
	return result, nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
