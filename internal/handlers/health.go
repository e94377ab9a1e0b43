package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status       string `json:"status"`
	AIConfigured bool   `json:"aiConfigured"`
	Model        string `json:"model"`
}

// Health возвращает статус сервиса; без ключа Gemini сервис помечается как degraded.
func Health(model string, aiConfigured bool) echo.HandlerFunc {
	response := HealthResponse{Status: "ok", AIConfigured: aiConfigured, Model: model}
	if !aiConfigured {
		response.Status = "degraded"
	}

	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, response)
	}
}
