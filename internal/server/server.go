package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/family-meal-planner/internal/ai"
	"example.com/family-meal-planner/internal/config"
	"example.com/family-meal-planner/internal/handlers"
)

const apiPrefix = "/api"

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger) *echo.Echo {
	client := ai.NewGeminiClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.Timeout)
	return newEcho(cfg, logger, client)
}

func newEcho(cfg config.Config, logger *slog.Logger, client ai.Client) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	if len(cfg.Server.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost},
		}))
	}
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(staticAssets(cfg.Server.StaticDir))

	aiService := ai.NewService(client, cfg.AI.Model, logger)
	mealHandler := handlers.NewMealHandler(aiService, cfg.AI.APIKey)

	var apiMiddleware []echo.MiddlewareFunc
	if cfg.AI.RateLimitPerMinute > 0 {
		apiMiddleware = append(apiMiddleware, aiRateLimiter(cfg.AI))
	}

	registerRoutes(
		e,
		mealHandler,
		handlers.Health(cfg.AI.Model, mealHandler.Configured),
		apiMiddleware...,
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// staticAssets раздает файлы приложения для GET/HEAD вне /api.
func staticAssets(root string) echo.MiddlewareFunc {
	return middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  root,
		Index: "index.html",
		Skipper: func(c echo.Context) bool {
			method := c.Request().Method
			if method != http.MethodGet && method != http.MethodHead {
				return true
			}
			path := c.Request().URL.Path
			return path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/")
		},
	})
}

// errorHandler превращает ошибки роутера и паники в JSON-конверт {"error": ...}.
// Метод, не разрешенный на маршруте, считается неизвестным маршрутом.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var writeErr error
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr) && (httpErr.Code == http.StatusNotFound || httpErr.Code == http.StatusMethodNotAllowed):
			writeErr = handlers.NotFound(c)
		case errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError:
			failure := ai.BadRequest(fmt.Sprint(httpErr.Message))
			writeErr = c.JSON(httpErr.Code, failure.Envelope())
		default:
			logger.ErrorContext(c.Request().Context(), "unhandled request error",
				slog.String("uri", c.Request().RequestURI),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("error", err.Error()),
			)
			failure := ai.UpstreamError(err)
			writeErr = c.JSON(failure.HTTPStatus(), failure.Envelope())
		}

		if writeErr != nil {
			logger.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return handlers.TooManyRequests(c)
		},
	})
}
