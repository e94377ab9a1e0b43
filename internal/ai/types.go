package ai

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Fields is a decoded request body. Nested values keep the shape the client sent.
type Fields map[string]any

// GenerateRequest is the input of the plan flow. Collections are passed to the
// model as is: unknown properties and nulls inside them are preserved.
type GenerateRequest struct {
	StartISO     string
	Foods        any
	Profiles     any
	Prefs        any
	Recently     any
	Comments     any
	History      any
	CustomPrompt string
}

type SearchRequest struct {
	Query    string
	Foods    any
	Profiles any
	Prefs    any
	History  any
	Comments any
}

// Document is a normalized model reply, returned to the caller as is.
type Document map[string]any

// NewGenerateRequest извлекает поля плана из тела запроса.
func NewGenerateRequest(fields Fields) GenerateRequest {
	return GenerateRequest{
		StartISO:     text(fields["startIso"]),
		Foods:        fields["foods"],
		Profiles:     fields["profiles"],
		Prefs:        fields["prefs"],
		Recently:     fields["recently"],
		Comments:     fields["comments"],
		History:      fields["history"],
		CustomPrompt: text(fields["customPrompt"]),
	}
}

// NewSearchRequest извлекает поля поиска из тела запроса.
func NewSearchRequest(fields Fields) SearchRequest {
	return SearchRequest{
		Query:    text(fields["query"]),
		Foods:    fields["foods"],
		Profiles: fields["profiles"],
		Prefs:    fields["prefs"],
		History:  fields["history"],
		Comments: fields["comments"],
	}
}

// withDefaults заменяет отсутствующие и пустые коллекции пустыми значениями.
func (r GenerateRequest) withDefaults() GenerateRequest {
	r.Foods = orDefault(r.Foods, []any{})
	r.Profiles = orDefault(r.Profiles, []any{})
	r.Prefs = orDefault(r.Prefs, map[string]any{})
	r.Recently = orDefault(r.Recently, []any{})
	r.Comments = orDefault(r.Comments, []any{})
	r.History = orDefault(r.History, []any{})
	return r
}

func (r SearchRequest) withDefaults() SearchRequest {
	r.Foods = orDefault(r.Foods, []any{})
	r.Profiles = orDefault(r.Profiles, []any{})
	r.Prefs = orDefault(r.Prefs, map[string]any{})
	r.History = orDefault(r.History, []any{})
	r.Comments = orDefault(r.Comments, []any{})
	return r
}

func orDefault(value, fallback any) any {
	if isBlank(value) {
		return fallback
	}
	return value
}

// isBlank reports null, false, zero, "" and empty containers.
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	case float64:
		return v == 0
	case int:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// text renders a scalar field as a string; blank values become "".
func text(value any) string {
	if isBlank(value) {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
