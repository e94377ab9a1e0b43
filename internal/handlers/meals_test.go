package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/family-meal-planner/internal/ai"
)

type stubClient struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

func newTestEcho(client ai.Client, apiKey string) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewMealHandler(ai.NewService(client, "gemini-test", logger), apiKey)

	e := echo.New()
	e.POST("/api/generate", handler.GeneratePlan)
	e.POST("/api/search", handler.Search)
	return e
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const generateBody = `{"startIso":"2024-05-06","foods":[{"name":"Pasta","type":"Hauptgericht","tags":["italian"]}]}`

func TestGeneratePlanReturnsParsedPlan(t *testing.T) {
	client := &stubClient{reply: "```json\n{\"weekStart\":\"2024-05-06\",\"days\":[],\"source\":\"ai\",\"aiMessage\":\"ok\"}\n```"}
	e := newTestEcho(client, "key")

	rec := post(e, "/api/generate", generateBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"weekStart":"2024-05-06","days":[],"source":"ai","aiMessage":"ok"}`, rec.Body.String())
	require.Len(t, client.prompts, 1)
	assert.Contains(t, promptContext(t, client.prompts[0]), `"foods":[{"name":"Pasta","tags":["italian"],"type":"Hauptgericht"}]`)
}

func promptContext(t *testing.T, prompt string) string {
	t.Helper()

	idx := strings.LastIndex(prompt, "\n")
	require.GreaterOrEqual(t, idx, 0)
	return prompt[idx+1:]
}

func TestGeneratePlanPassesClientDataThrough(t *testing.T) {
	client := &stubClient{reply: `{"days":[]}`}
	e := newTestEcho(client, "key")

	body := `{
		"startIso":"2024-05-06",
		"foods":[{"id":7,"name":"Pasta","type":"Hauptgericht","tags":[],"kcal":500}],
		"prefs":[],
		"comments":[{"week":"2024-04-29","date":null,"mealName":null,"items":[],"text":"lecker","by":"Helen","when":"2024-04-30T12:00:00Z"}],
		"history":[{"weekStart":"2024-04-29"}],
		"extra":true
	}`
	rec := post(e, "/api/generate", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, client.prompts, 1)
	assert.JSONEq(t, `{
		"foods":[{"id":7,"name":"Pasta","type":"Hauptgericht","tags":[],"kcal":500}],
		"profiles":[],
		"prefs":{},
		"recently":[],
		"comments":[{"week":"2024-04-29","date":null,"mealName":null,"items":[],"text":"lecker","by":"Helen","when":"2024-04-30T12:00:00Z"}],
		"history":[{"weekStart":"2024-04-29"}],
		"customPrompt":""
	}`, promptContext(t, client.prompts[0]))
}

func TestSearchPassesClientDataThrough(t *testing.T) {
	client := &stubClient{reply: `{"answer":"ok"}`}
	e := newTestEcho(client, "key")

	rec := post(e, "/api/search", `{"query":42,"profiles":[{"id":1,"name":"Helen","age":9}],"prefs":{"1":{"7":"like"}}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Nutzerfrage: 42\n")
	assert.JSONEq(t, `{
		"foods":[],
		"profiles":[{"id":1,"name":"Helen","age":9}],
		"prefs":{"1":{"7":"like"}},
		"history":[],
		"comments":[]
	}`, promptContext(t, client.prompts[0]))
}

func TestGeneratePlanWithoutDays(t *testing.T) {
	e := newTestEcho(&stubClient{reply: `{"foo":"bar"}`}, "key")

	rec := post(e, "/api/generate", generateBody)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"bad_plan"}`, rec.Body.String())
}

func TestSearchDefaultsMissingFields(t *testing.T) {
	client := &stubClient{reply: `{"answer":"found 2"}`}
	e := newTestEcho(client, "key")

	rec := post(e, "/api/search", `{"query":"vegan"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"answer":"found 2","foodMatches":[],"planMatches":[],"commentInsights":[]}`, rec.Body.String())
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Nutzerfrage: vegan")
}

func TestMissingKeySkipsUpstream(t *testing.T) {
	client := &stubClient{reply: `{"days":[]}`}
	e := newTestEcho(client, "")

	for _, path := range []string{"/api/generate", "/api/search"} {
		rec := post(e, path, `{}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "server_misconfigured", body["error"])
		assert.NotEmpty(t, body["message"])
	}
	assert.Empty(t, client.prompts)
}

func TestEmptyBodyIsEmptyObject(t *testing.T) {
	client := &stubClient{reply: `{"days":[]}`}
	e := newTestEcho(client, "key")

	rec := post(e, "/api/generate", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], `"foods":[]`)
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	client := &stubClient{reply: `{"days":[]}`}
	e := newTestEcho(client, "key")

	for _, body := range []string{`{`, `[]`, `   `, "\n", `{} {}`, `"text"`} {
		rec := post(e, "/api/generate", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		var envelope map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "bad_request", envelope["error"])
		assert.NotEmpty(t, envelope["message"])
	}
	assert.Empty(t, client.prompts)
}

func TestUpstreamFailuresMapTo502(t *testing.T) {
	e := newTestEcho(&stubClient{err: ai.UpstreamHTTP(http.StatusServiceUnavailable, []byte("down"))}, "key")

	rec := post(e, "/api/search", `{"query":"x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"upstream_http","status":503,"body":"down"}`, rec.Body.String())
}

func TestUnparsableReplyMapsToParseError(t *testing.T) {
	e := newTestEcho(&stubClient{reply: "Sorry, I cannot help"}, "key")

	rec := post(e, "/api/generate", generateBody)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"parse_error","raw":"Sorry, I cannot help"}`, rec.Body.String())
}
