package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/family-meal-planner/internal/ai"
)

func failure(c echo.Context, f *ai.Failure) error {
	return c.JSON(f.HTTPStatus(), f.Envelope())
}

// NotFound отвечает 404 для любых неизвестных маршрутов записи.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": "not_found"})
}

// TooManyRequests отвечает 429, когда лимит запросов к модели исчерпан.
func TooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate_limited"})
}
