package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebot/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotebot/internal/app"
	"github.com/jsamuelsen/quotebot/internal/domain"
)

// QuoteHandler serves the read-only quote API.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteResponse is the HTTP representation of a quote.
type QuoteResponse struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// AuthorsResponse lists the distinct authors.
type AuthorsResponse struct {
	Authors []string `json:"authors"`
}

func toQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Text:   q.Text,
		Author: q.Author,
	}
}

// GetRandomQuote handles GET /api/v1/quotes/random[?author=].
//
// The author filter follows the /quote command: a case-insensitive substring
// match. An empty store and an unmatched author both answer 404.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Param author query string false "Author substring"
// @Success 200 {object} QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *QuoteHandler) GetRandomQuote(c *gin.Context) {
	author := strings.TrimSpace(c.Query("author"))

	quote, err := h.service.RandomQuote(c.Request.Context(), author)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// ListAuthors handles GET /api/v1/authors.
//
// @Summary List distinct authors
// @Tags quotes
// @Produce json
// @Success 200 {object} AuthorsResponse
// @Router /api/v1/authors [get]
func (h *QuoteHandler) ListAuthors(c *gin.Context) {
	authors := h.service.ListAuthors(c.Request.Context())
	if authors == nil {
		authors = []string{}
	}

	c.JSON(http.StatusOK, AuthorsResponse{Authors: authors})
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/random", h.GetRandomQuote)
	rg.GET("/authors", h.ListAuthors)
}
