package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	generationTemperature = 0.4
	generationTopP        = 0.9
	generationMaxTokens   = 1536
	responseMimeJSON      = "application/json"
)

// GeminiClient calls the Google Generative Language API (Gemini).
type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiConfig    `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient создает клиент Gemini с заданными параметрами.
func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration) *GeminiClient {
	trimmedURL := strings.TrimRight(baseURL, "/")
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: trimmedURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate отправляет промпт в Gemini одной попыткой и возвращает текст первого кандидата.
// Пустой список кандидатов дает пустую строку, а не ошибку.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	request := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiConfig{
			Temperature:      generationTemperature,
			TopP:             generationTopP,
			MaxOutputTokens:  generationMaxTokens,
			ResponseMimeType: responseMimeJSON,
		},
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return "", UpstreamError(err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", UpstreamError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return "", UpstreamError(redactKey(err, c.apiKey))
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		body, err := io.ReadAll(response.Body)
		if err != nil {
			body = nil
		}
		return "", UpstreamHTTP(response.StatusCode, body)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", UpstreamError(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", UpstreamError(fmt.Errorf("decode gemini response: %w", err))
	}

	if len(parsed.Candidates) == 0 {
		return "", nil
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", nil
	}

	return parts[0].Text, nil
}

// url.Error embeds the request URL, which carries the key as a query parameter.
func redactKey(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	message := strings.ReplaceAll(err.Error(), url.QueryEscape(apiKey), "REDACTED")
	return errors.New(message)
}
