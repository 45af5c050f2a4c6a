package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arcadia-live/chat-service/internal/config"
	"github.com/arcadia-live/chat-service/internal/domain"
	"github.com/arcadia-live/chat-service/internal/processor"
	"github.com/arcadia-live/chat-service/internal/store"
	"github.com/arcadia-live/chat-service/pkg/log"
	"github.com/arcadia-live/chat-service/pkg/response"
)

// HTTPHandler serves the REST surface: message history, the game catalog
// and attachment uploads.
type HTTPHandler struct {
	messages  *store.MessageLog
	games     *store.GameCatalog
	processor processor.ImageProcessor
	history   config.HistoryConfig
	upload    config.UploadConfig
}

func NewHTTPHandler(
	messages *store.MessageLog,
	games *store.GameCatalog,
	proc processor.ImageProcessor,
	history config.HistoryConfig,
	upload config.UploadConfig,
) *HTTPHandler {
	return &HTTPHandler{
		messages:  messages,
		games:     games,
		processor: proc,
		history:   history,
		upload:    upload,
	}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/messages", h.GetMessages)
		api.GET("/games", h.GetGames)
		api.POST("/upload", h.Upload)
	}

	r.GET("/health", h.HealthCheck)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
}

// GetMessages returns a page of chat history, newest first. offset counts
// from the newest end of the log.
func (h *HTTPHandler) GetMessages(c *gin.Context) {
	limit := h.history.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
		if limit > h.history.MaxLimit {
			limit = h.history.MaxLimit
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			response.BadRequest(c, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	messages, total, hasMore := h.messages.Page(offset, limit)

	c.JSON(http.StatusOK, domain.MessageHistory{
		Messages: messages,
		Total:    total,
		HasMore:  hasMore,
	})
}

// GetGames returns the launcher catalog.
func (h *HTTPHandler) GetGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.games.Games())
}

// Upload accepts a multipart image (field "image"), resizes and stores it,
// and returns the URL the attachment can be referenced at in a later
// send-message event.
func (h *HTTPHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.upload.MaxBytes)

	file, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.PayloadTooLarge(c, "image exceeds the upload size limit")
			return
		}
		response.BadRequest(c, "image file is required")
		return
	}
	if file.Size > h.upload.MaxBytes {
		response.PayloadTooLarge(c, "image exceeds the upload size limit")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalError(c, "failed to read upload")
		return
	}
	defer src.Close()

	imageURL, err := h.processor.Process(c.Request.Context(), src)
	if err != nil {
		if errors.Is(err, processor.ErrNotImage) {
			response.UnsupportedMediaType(c, "only image files are allowed")
			return
		}
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("upload processing failed")
		response.InternalError(c, "failed to process image")
		return
	}

	c.JSON(http.StatusOK, domain.UploadResult{ImageURL: imageURL})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}
