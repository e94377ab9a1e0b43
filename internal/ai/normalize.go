package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	fieldDays            = "days"
	fieldAnswer          = "answer"
	fieldFoodMatches     = "foodMatches"
	fieldPlanMatches     = "planMatches"
	fieldCommentInsights = "commentInsights"
)

const codeFence = "```"

// StripFences убирает markdown-обертку ```json ... ``` вокруг ответа модели.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, codeFence) {
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
	}

	if strings.HasSuffix(trimmed, codeFence) {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, codeFence))
	}

	return trimmed
}

// NormalizePlan разбирает ответ модели для плана. Без ключа days план не принимается.
func NormalizePlan(completion string) (Document, error) {
	parsed, err := parseCompletion(completion)
	if err != nil {
		return nil, err
	}

	object, ok := parsed.(map[string]any)
	if !ok || len(object) == 0 {
		return nil, BadPlan()
	}
	if _, ok := object[fieldDays]; !ok {
		return nil, BadPlan()
	}

	return Document(object), nil
}

// NormalizeSearch разбирает ответ поиска и дополняет отсутствующие поля пустыми значениями.
func NormalizeSearch(completion string) (Document, error) {
	parsed, err := parseCompletion(completion)
	if err != nil {
		return nil, err
	}

	object, ok := parsed.(map[string]any)
	if !ok {
		return emptySearchResult(), nil
	}

	result := Document(object)
	for key, value := range emptySearchResult() {
		if _, exists := result[key]; !exists {
			result[key] = value
		}
	}

	return result, nil
}

func emptySearchResult() Document {
	return Document{
		fieldAnswer:          "",
		fieldFoodMatches:     []any{},
		fieldPlanMatches:     []any{},
		fieldCommentInsights: []any{},
	}
}

func parseCompletion(completion string) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(StripFences(completion))))
	decoder.UseNumber()

	var parsed any
	if err := decoder.Decode(&parsed); err != nil {
		return nil, ParseError(completion)
	}

	// Trailing data after the first value is not valid JSON either.
	var extra any
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ParseError(completion)
	}

	return parsed, nil
}
