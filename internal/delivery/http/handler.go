package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/shelfcheck/backend/internal/domain"
)

const (
	serviceName    = "shelfcheck-backend"
	serviceVersion = "1.0.0"

	maxPageBodyBytes = 8 << 20
)

// Resolver resolves scraped page info into a notification
type Resolver interface {
	Resolve(ctx context.Context, page *domain.PageInfo) (*domain.Notification, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver Resolver
	parser   domain.PageParser
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver Resolver, parser domain.PageParser) *Handler {
	return &Handler{
		resolver: resolver,
		parser:   parser,
	}
}

// pageRequest carries a raw product page
type pageRequest struct {
	HTML string `json:"html" binding:"required"`
	URL  string `json:"url,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ResolveBook handles POST /api/v1/books/resolve with a title and optional author
func (h *Handler) ResolveBook(c *gin.Context) {
	var page domain.PageInfo
	if err := c.ShouldBindJSON(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	h.resolve(c, &page)
}

// ResolvePage handles POST /api/v1/books/resolve/page. The body is either
// JSON {"html": "..."} or the page itself sent as text/html.
func (h *Handler) ResolvePage(c *gin.Context) {
	html, pageURL, err := readPageBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.parser.Parse(html)
	if err != nil {
		if errors.Is(err, domain.ErrTitleNotFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable product page"})
		return
	}
	page.URL = pageURL

	h.resolve(c, page)
}

func readPageBody(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "text/html") {
		html, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPageBodyBytes))
		if err != nil {
			return nil, "", errors.New("failed to read page body")
		}
		if len(html) == 0 {
			return nil, "", errors.New("page body is empty")
		}
		return html, c.Query("url"), nil
	}

	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", errors.New("html is required")
	}
	return []byte(req.HTML), req.URL, nil
}

// resolve runs the lookup and writes the single notification payload
func (h *Handler) resolve(c *gin.Context, page *domain.PageInfo) {
	notification, err := h.resolver.Resolve(c.Request.Context(), page)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		log.Error().Err(err).Str("request_id", requestID(c)).Msg("resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, notification)
}
