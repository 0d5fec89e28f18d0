package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hydroatlas/internal/chat"
	"hydroatlas/internal/models"
	"hydroatlas/pkg/logger"
	"hydroatlas/pkg/ratelimiter"
)

// ChatService is the orchestrator surface exposed over HTTP.
type ChatService interface {
	Ask(ctx context.Context, question string) *models.ChatResponse
	GetStatus(ctx context.Context) *models.ChatStatus
	IndexAllWaterObjects(ctx context.Context) (int, error)
}

// Handler wires the chat and indexing operations into gin routes.
type Handler struct {
	chatService ChatService
	searcher    chat.Searcher
	indexer     chat.DocumentIndexer
	log         *logger.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(chatService ChatService, searcher chat.Searcher, indexer chat.DocumentIndexer, log *logger.Logger) *Handler {
	return &Handler{
		chatService: chatService,
		searcher:    searcher,
		indexer:     indexer,
		log:         log,
	}
}

// Register mounts all routes under /api. The ask endpoint is guarded by the
// rate limiter since every call can trigger an LLM generation.
func (h *Handler) Register(router *gin.Engine, limiter ratelimiter.RateLimiter) {
	api := router.Group("/api")
	{
		api.POST("/chat", rateLimit(limiter), h.ask)
		api.GET("/chat/status", h.status)
		api.POST("/chat/search", h.search)
		api.POST("/chat/index", h.indexWaterObjects)
		api.POST("/chat/index/pdf", h.indexPDF)
		api.POST("/chat/index/text", h.indexText)
		api.DELETE("/chat/index", h.clearIndex)
	}
}

func rateLimit(limiter ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Слишком много запросов. Попробуйте позже.",
			})
			return
		}
		c.Next()
	}
}

func (h *Handler) ask(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Сообщение не может быть пустым"})
		return
	}

	resp := h.chatService.Ask(c.Request.Context(), req.Message)

	h.log.WithPayload(map[string]interface{}{
		"time_ms":  resp.ProcessingTimeMs,
		"used_rag": resp.UsedRag,
		"sources":  len(resp.Sources),
	}).Info("chat response generated")

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.chatService.GetStatus(c.Request.Context()))
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"topK"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Запрос не может быть пустым"})
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	result := h.searcher.Search(c.Request.Context(), req.Query, req.TopK)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) indexWaterObjects(c *gin.Context) {
	count, err := h.chatService.IndexAllWaterObjects(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("water object indexing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Ошибка индексации водных объектов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Индексация завершена",
		"indexedCount": count,
	})
}

func (h *Handler) indexPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "PDF-файл обязателен"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Поддерживаются только PDF-файлы"})
		return
	}

	documentName := c.PostForm("documentName")
	if documentName == "" {
		documentName = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}
	chunkSize, _ := strconv.Atoi(c.PostForm("chunkSize"))
	chunkOverlap, _ := strconv.Atoi(c.PostForm("chunkOverlap"))

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+".pdf")
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.log.WithError(err).Error("failed to save uploaded PDF")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Не удалось сохранить файл"})
		return
	}
	defer os.Remove(tmpPath)

	count, err := h.indexer.IndexPDF(c.Request.Context(), tmpPath, documentName, chunkSize, chunkOverlap)
	if err != nil {
		h.log.WithError(err).Error("PDF indexing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Ошибка индексации PDF"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Документ проиндексирован",
		"documentName": documentName,
		"indexedCount": count,
	})
}

type indexTextRequest struct {
	Content      string `json:"content" binding:"required"`
	DocumentName string `json:"documentName" binding:"required"`
	ContentType  string `json:"contentType"`
}

func (h *Handler) indexText(c *gin.Context) {
	var req indexTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Содержимое и имя документа обязательны"})
		return
	}

	count, err := h.indexer.IndexText(c.Request.Context(), req.Content, req.DocumentName, req.ContentType)
	if err != nil {
		h.log.WithError(err).Error("text indexing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Ошибка индексации текста"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Текст проиндексирован",
		"documentName": req.DocumentName,
		"indexedCount": count,
	})
}

func (h *Handler) clearIndex(c *gin.Context) {
	contentType := c.Query("contentType")

	if err := h.indexer.ClearIndex(c.Request.Context(), contentType); err != nil {
		h.log.WithError(err).Error("index clearing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Ошибка очистки индекса"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Индекс очищен"})
}
