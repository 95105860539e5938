package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/scraper"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*domain.ProductMetadata, error)
}

type ScrapeHandler struct {
	extractor Extractor
	logger    *zap.Logger
}

func NewScrapeHandler(e Extractor, logger *zap.Logger) *ScrapeHandler {
	return &ScrapeHandler{extractor: e, logger: logger}
}

// RegisterRoutes mounts /scrapeProduct behind the given middleware, usually
// a rate limiter.
func (h *ScrapeHandler) RegisterRoutes(r gin.IRouter, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.ScrapeProduct)
	r.GET("/scrapeProduct", handlers...)
}

func (h *ScrapeHandler) ScrapeProduct(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	meta, err := h.extractor.Extract(c.Request.Context(), pageURL)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scraper.ErrInvalidURL) || errors.Is(err, scraper.ErrIncompleteData) {
			status = http.StatusBadRequest
		}
		msg := err.Error()
		var xerr *scraper.ExtractionError
		if errors.As(err, &xerr) {
			msg = xerr.UserMessage()
		}
		h.logger.Info("scrape failed", zap.String("url", pageURL), zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, ScrapeResponse{
		Title:    meta.Title,
		Image:    meta.Image,
		Price:    meta.Price.InexactFloat64(),
		Platform: meta.Platform,
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
