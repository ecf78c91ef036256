package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/ashiphsayyad32/Zenimax-microservice-app/domain"
	"github.com/ashiphsayyad32/Zenimax-microservice-app/upstream"
)

// Register wires up all API routes on the provided Echo instance. deduper may
// be nil, in which case Idempotency-Key headers are ignored.
func Register(e *echo.Echo, todos TodoAggregator, categories CategoryService, deduper Deduper, probes []Probe, logger *log.Logger) {
	e.GET("/api/todos", getTodos(todos, logger))
	e.GET("/api/categories", getCategories(categories, logger))
	e.POST("/api/categories", postCategory(categories, deduper, logger), inflateBody)
	e.GET("/health", healthz)
	e.GET("/api/health", healthz)
	e.GET("/api/health/services", servicesHealth(probes))
}

func healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: upstream.StateUp})
}

func getTodos(todos TodoAggregator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		env := todos.Produce(c.Request().Context())
		if !env.Success {
			logger.WithField("details", env.Error.Details).Error("todos aggregation failed")
			return c.JSON(http.StatusInternalServerError, env)
		}
		return c.JSON(http.StatusOK, env)
	}
}

func getCategories(categories CategoryService, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		cats, err := categories.List(c.Request().Context())
		if err != nil {
			logger.WithError(err).Error("error fetching categories")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgFetchCategoriesFailed})
		}
		return c.JSON(http.StatusOK, cats)
	}
}

func postCategory(categories CategoryService, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		body, err := io.ReadAll(io.LimitReader(c.Request().Body, postCategoryMaxSize+1))
		if err != nil || len(body) > postCategoryMaxSize {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		}
		var req createCategoryRequest
		if len(bytes.TrimSpace(body)) > 0 {
			if err := sonic.ConfigStd.Unmarshal(body, &req); err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
			}
		}

		// Validated here as well as in the service so an invalid request never records its idempotency key.
		if strings.TrimSpace(req.Name) == "" {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgCategoryNameRequired})
		}

		key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
		recorded := false
		if deduper != nil && key != "" {
			added, err := deduper.Add(ctx, categoriesScope, key)
			switch {
			case err != nil:
				logger.WithError(err).Warn("idempotency check failed; creating without it")
			case !added:
				return c.JSON(http.StatusConflict, errorResponse{Error: msgDuplicateRequest})
			default:
				recorded = true
			}
		}

		cat, err := categories.Create(ctx, req.Name)
		if err != nil {
			if recorded {
				if rerr := deduper.Remove(context.WithoutCancel(ctx), categoriesScope, key); rerr != nil {
					logger.WithError(rerr).Warn("failed to release idempotency key")
				}
			}
			if errors.Is(err, domain.ErrCategoryNameRequired) {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: msgCategoryNameRequired})
			}
			logger.WithError(err).Error("error creating category")
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgCreateCategoryFailed})
		}
		return c.JSON(http.StatusCreated, cat)
	}
}

// servicesHealth probes every dependency concurrently and reports UP or DOWN
// for each. It always answers 200 so callers can render partial outages.
func servicesHealth(probes []Probe) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), upstream.DefaultHealthTimeout+time.Second)
		defer cancel()

		states := make(map[string]string, len(probes))
		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, p := range probes {
			wg.Add(1)
			go func(p Probe) {
				defer wg.Done()
				state := upstream.State(p.Check(ctx))
				mu.Lock()
				states[p.Name] = state
				mu.Unlock()
			}(p)
		}
		wg.Wait()
		return c.JSON(http.StatusOK, states)
	}
}
