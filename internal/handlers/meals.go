package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/family-meal-planner/internal/ai"
)

const missingKeyMessage = "GEMINI_API_KEY not set"

type MealHandler struct {
	Service    *ai.Service
	Configured bool
}

// NewMealHandler создает обработчик генерации плана и поиска.
// Пустой apiKey не мешает старту сервера, но каждый запрос получит server_misconfigured.
func NewMealHandler(service *ai.Service, apiKey string) *MealHandler {
	return &MealHandler{
		Service:    service,
		Configured: apiKey != "",
	}
}

// GeneratePlan создает недельный план питания через модель.
func (h *MealHandler) GeneratePlan(c echo.Context) error {
	return h.dispatch(c, func(ctx context.Context, fields ai.Fields) (ai.Document, error) {
		return h.Service.GeneratePlan(ctx, ai.NewGenerateRequest(fields))
	})
}

// Search отвечает на свободный вопрос по блюдам, планам и комментариям.
func (h *MealHandler) Search(c echo.Context) error {
	return h.dispatch(c, func(ctx context.Context, fields ai.Fields) (ai.Document, error) {
		return h.Service.Search(ctx, ai.NewSearchRequest(fields))
	})
}

func (h *MealHandler) dispatch(c echo.Context, run func(ctx context.Context, fields ai.Fields) (ai.Document, error)) error {
	if !h.Configured {
		return failure(c, ai.ServerMisconfigured(missingKeyMessage))
	}

	fields, err := decodeBody(c.Request())
	if err != nil {
		return failure(c, ai.BadRequest(err.Error()))
	}

	document, err := run(c.Request().Context(), fields)
	if err != nil {
		return failure(c, ai.AsFailure(err))
	}

	return c.JSON(http.StatusOK, document)
}

// decodeBody читает тело запроса; только пустое тело считается пустым объектом.
func decodeBody(r *http.Request) (ai.Fields, error) {
	raw := []byte("{}")
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if len(body) > 0 {
			raw = body
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var fields ai.Fields
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode body: unexpected data after JSON object")
	}

	return fields, nil
}
