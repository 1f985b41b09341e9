package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxKrooloResponseBytes = 4 << 20

// KrooloConfig points the fallback analyzer at its two chat routes.
type KrooloConfig struct {
	// AIBaseURL serves the "global chat" route.
	AIBaseURL string
	// APIBaseURL serves the alternate "chat-with-ai" route.
	APIBaseURL string
	Token      string
	Timeout    time.Duration
}

// KrooloAnalyzer submits extracted text to the Kroolo AI chat service.
type KrooloAnalyzer struct {
	endpoints []krooloEndpoint
	token     string
	client    *http.Client
}

type krooloEndpoint struct {
	name string
	url  string
}

func NewKrooloAnalyzer(cfg KrooloConfig, httpClient *http.Client) *KrooloAnalyzer {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &KrooloAnalyzer{
		endpoints: []krooloEndpoint{
			{name: "global chat", url: joinURL(cfg.AIBaseURL, "global-chat")},
			{name: "chat-with-ai", url: joinURL(cfg.APIBaseURL, "chat-with-ai")},
		},
		token:  cfg.Token,
		client: httpClient,
	}
}

func (k *KrooloAnalyzer) Name() string { return "Kroolo" }

// Analyze extracts the document text and tries each chat route in order.
func (k *KrooloAnalyzer) Analyze(ctx context.Context, doc Document, standardNames []string) (*AnalysisResult, error) {
	text, err := ExtractText(doc)
	if err != nil {
		return nil, &AnalysisError{Provider: k.Name(), Err: fmt.Errorf("text extraction failed: %w", err)}
	}
	prompt := BuildPrompt(standardNames, doc.FileName) + "\n\nDocument text:\n" + text

	var failures []string
	for _, ep := range k.endpoints {
		reply, err := k.send(ctx, ep, prompt)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", ep.name).Msg("[Kroolo] chat request failed")
			failures = append(failures, fmt.Sprintf("%s: %v", ep.name, err))
			continue
		}
		result, structured := ParseResponse(reply, standardNames)
		if !structured {
			log.Warn().Str("endpoint", ep.name).Msg("[Kroolo] response had no JSON result, mined text instead")
		}
		return result, nil
	}
	return nil, &AnalysisError{Provider: k.Name(), Err: errors.New(strings.Join(failures, "; "))}
}

func (k *KrooloAnalyzer) send(ctx context.Context, ep krooloEndpoint, prompt string) (string, error) {
	if ep.url == "" {
		return "", errors.New("endpoint not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"message": prompt,
		"stream":  false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if k.token != "" {
		req.Header.Set("Authorization", "Bearer "+k.token)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKrooloResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("non-2xx status code: %d", resp.StatusCode)
	}

	reply := replyText(raw)
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("empty response")
	}
	return reply, nil
}

// replyText pulls the assistant text out of the chat envelope. Bodies that
// are not a known envelope are returned as-is.
func replyText(raw []byte) string {
	var envelope map[string]interface{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return string(raw)
	}
	if _, ok := envelope["overallScore"]; ok {
		return string(raw)
	}
	switch data := envelope["data"].(type) {
	case string:
		if strings.TrimSpace(data) != "" {
			return data
		}
	case map[string]interface{}:
		if _, ok := data["overallScore"]; ok {
			if b, err := json.Marshal(data); err == nil {
				return string(b)
			}
		}
		if s := pickText(data); s != "" {
			return s
		}
	}
	if s := pickText(envelope); s != "" {
		return s
	}
	return string(raw)
}

func pickText(m map[string]interface{}) string {
	for _, key := range []string{"response", "answer", "message", "content"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func joinURL(base, path string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + path
}
