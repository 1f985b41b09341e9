package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultGeminiBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultGeminiModel   = "gemini-2.0-flash"

	geminiMaxTokens = 4096
)

// GeminiAnalyzer submits the raw document bytes to Gemini.
type GeminiAnalyzer struct {
	client *openai.Client
	model  string
}

// NewGeminiAnalyzer builds the primary analyzer. An empty apiKey yields an
// analyzer that fails every call with ErrMissingCredential.
func NewGeminiAnalyzer(apiKey, baseURL, model string, httpClient *http.Client) *GeminiAnalyzer {
	if model == "" {
		model = DefaultGeminiModel
	}
	if apiKey == "" {
		return &GeminiAnalyzer{model: model}
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &GeminiAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (g *GeminiAnalyzer) Name() string { return "Gemini" }

// Analyze sends the file inline (base64 data URL) with the shared prompt.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, doc Document, standardNames []string) (*AnalysisResult, error) {
	if g.client == nil {
		return nil, &AnalysisError{Provider: g.Name(), Err: ErrMissingCredential}
	}

	mimeType := doc.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = MimeTypeForExt(doc.Ext())
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(doc.Data)

	req := openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: geminiMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: BuildPrompt(standardNames, doc.FileName)},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	}

	log.Info().Str("file", doc.FileName).Int("bytes", len(doc.Data)).Str("model", g.model).Msg("[Gemini] submitting document")
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &AnalysisError{Provider: g.Name(), Err: fmt.Errorf("chat completion failed: %w", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &AnalysisError{Provider: g.Name(), Err: errors.New("empty response from model")}
	}

	result, structured := ParseResponse(resp.Choices[0].Message.Content, standardNames)
	if !structured {
		log.Warn().Str("file", doc.FileName).Msg("[Gemini] response had no JSON result, mined text instead")
	}
	return result, nil
}
