package server

import (
	"github.com/labstack/echo/v4"

	"example.com/family-meal-planner/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	mealHandler *handlers.MealHandler,
	health echo.HandlerFunc,
	apiMiddleware ...echo.MiddlewareFunc,
) {
	e.GET("/health", health)

	api := e.Group(apiPrefix, apiMiddleware...)
	api.POST("/generate", mealHandler.GeneratePlan)
	api.POST("/search", mealHandler.Search)
	api.Any("/*", handlers.NotFound)
}
