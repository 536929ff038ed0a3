package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tarifaninja/faresearch/internal/cache"
	"github.com/tarifaninja/faresearch/internal/merge"
	"github.com/tarifaninja/faresearch/internal/models"
	"github.com/tarifaninja/faresearch/internal/orchestrator"
)

type SearchHandler struct {
	orchestrator *orchestrator.Orchestrator
	cache        cache.Cache
}

func NewSearchHandler(orch *orchestrator.Orchestrator, c cache.Cache) *SearchHandler {
	return &SearchHandler{
		orchestrator: orch,
		cache:        c,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	q, err := req.Normalize()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	// A hit returns the stored merged list verbatim; no re-merge.
	if offers, found := h.cache.Get(ctx, q); found {
		return c.JSON(http.StatusOK, offers)
	}

	offers := merge.Offers(h.orchestrator.Search(ctx, q))

	if err := h.cache.Set(ctx, q, offers); err != nil {
		log.Printf("cache store failed: %v", err)
	}

	return c.JSON(http.StatusOK, offers)
}

// Health reports static configuration only; it probes nothing.
func Health(amadeus, kiwi, cacheBackend bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			OK:      true,
			Amadeus: amadeus,
			Kiwi:    kiwi,
			Cache:   cacheBackend,
		})
	}
}
