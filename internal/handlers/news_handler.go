package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cryptocast/cryptocast/internal/domains/broadcast"
	"github.com/cryptocast/cryptocast/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// CreateNewsRequest is the editorial ingest payload.
type CreateNewsRequest struct {
	Title       string    `json:"title" binding:"required,max=512"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Content     string    `json:"content"`
	Provider    string    `json:"provider"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    string    `json:"category"`
	Ticker      string    `json:"ticker"`
	Slug        string    `json:"slug"`
}

// NewsHandler handles news desk HTTP requests
type NewsHandler struct {
	repo   broadcast.NewsRepository
	logger *Logger.Logger
}

// NewNewsHandler creates a new news handler
func NewNewsHandler(repo broadcast.NewsRepository, logger *Logger.Logger) *NewsHandler {
	return &NewsHandler{repo: repo, logger: logger}
}

// Create ingests one article into the news store
func (h *NewsHandler) Create(c *gin.Context) {
	var req CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	publishedAt := req.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	item := broadcast.NewsItem{
		Title:       req.Title,
		Description: req.Description,
		Source:      req.Source,
		Content:     req.Content,
		Provider:    req.Provider,
		PublishedAt: publishedAt,
		Category:    req.Category,
		Ticker:      req.Ticker,
		Slug:        req.Slug,
	}

	if err := h.repo.Create(c.Request.Context(), &item); err != nil {
		h.logger.Errorf("news ingest error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, NewsCreateResponse{
		Message: "News item created",
		Item:    item,
	})
}

// List returns a page of articles, newest first
func (h *NewsHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, total, err := h.repo.List(c.Request.Context(), offset, limit)
	if err != nil {
		h.logger.Errorf("news list error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, NewsListResponse{
		Items:      items,
		Pagination: PaginationInfo{Offset: offset, Limit: limit, Total: total},
	})
}
