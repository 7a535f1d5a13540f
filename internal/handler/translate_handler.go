// Package handler exposes a translator over HTTP.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/gpt-translator/internal/adapter"
	"github.com/hpn/gpt-translator/internal/security"
	"github.com/hpn/gpt-translator/internal/translator"
)

// TranslateRequest is the body of POST /v1/translate.
type TranslateRequest struct {
	Text *string `json:"text"`
}

// TranslateResponse is the reply of POST /v1/translate.
type TranslateResponse struct {
	Translation string `json:"translation"`
	Source      string `json:"source"`
	Target      string `json:"target"`
}

// BatchRequest is the body of POST /v1/translate/batch.
type BatchRequest struct {
	Texts []string `json:"texts"`
}

// BatchResponse is the reply of POST /v1/translate/batch.
type BatchResponse struct {
	Translations []string `json:"translations"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
}

// modelReporter is implemented by translators that know their model.
type modelReporter interface {
	Model() string
}

// TranslateHandler serves translation requests with a single translator.
type TranslateHandler struct {
	translator translator.Translator
	logger     *slog.Logger
}

// TranslateHandlerOption is a functional option for configuring TranslateHandler.
type TranslateHandlerOption func(*TranslateHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) TranslateHandlerOption {
	return func(h *TranslateHandler) {
		h.logger = logger
	}
}

// NewTranslateHandler creates a new TranslateHandler.
func NewTranslateHandler(t translator.Translator, opts ...TranslateHandlerOption) *TranslateHandler {
	h := &TranslateHandler{
		translator: t,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Register mounts the routes on r.
func (h *TranslateHandler) Register(r gin.IRouter) {
	r.POST("/v1/translate", h.HandleTranslate)
	r.POST("/v1/translate/batch", h.HandleBatch)
	r.GET("/health", h.HandleHealth)
}

// HandleTranslate handles POST /v1/translate.
func (h *TranslateHandler) HandleTranslate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}
	if req.Text == nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "text is required")
		return
	}

	translated, err := h.translator.Translate(c.Request.Context(), *req.Text)
	if err != nil {
		h.sendTranslateError(c, err)
		return
	}

	c.JSON(http.StatusOK, TranslateResponse{
		Translation: translated,
		Source:      h.translator.Source(),
		Target:      h.translator.Target(),
	})
}

// HandleBatch handles POST /v1/translate/batch.
func (h *TranslateHandler) HandleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	translations, err := translator.TranslateBatch(c.Request.Context(), h.translator, req.Texts)
	if err != nil {
		h.sendTranslateError(c, err)
		return
	}

	c.Set("batch_size", len(translations))
	c.JSON(http.StatusOK, BatchResponse{
		Translations: translations,
		Source:       h.translator.Source(),
		Target:       h.translator.Target(),
	})
}

// HandleHealth handles GET /health.
func (h *TranslateHandler) HandleHealth(c *gin.Context) {
	body := gin.H{
		"status": "healthy",
		"source": h.translator.Source(),
		"target": h.translator.Target(),
	}
	if m, ok := h.translator.(modelReporter); ok {
		body["model"] = m.Model()
	}
	c.JSON(http.StatusOK, body)
}

// sendTranslateError maps a translation failure to an HTTP status.
func (h *TranslateHandler) sendTranslateError(c *gin.Context, err error) {
	var apiErr *adapter.APIError

	switch {
	case errors.Is(err, translator.ErrEmptyBatch):
		sendError(c, http.StatusBadRequest, "invalid_request_error", "texts must not be empty")
		return
	case errors.As(err, &apiErr):
		h.logger.Warn("completion service rejected request",
			slog.Int("upstream_status", apiErr.StatusCode),
			slog.String("error", err.Error()),
		)
		sendError(c, http.StatusBadGateway, "upstream_error",
			fmt.Sprintf("completion service returned %d: %s", apiErr.StatusCode, security.Redact(apiErr.Message)))
		return
	case adapter.IsMalformedResponseError(err):
		h.logger.Warn("malformed completion response", slog.String("error", err.Error()))
		sendError(c, http.StatusBadGateway, "upstream_error", "completion service returned a malformed response")
		return
	}

	h.logger.Error("translation failed", slog.String("error", err.Error()))
	sendError(c, http.StatusBadGateway, "upstream_error", "translation failed")
}

// sendError sends an error response in OpenAI-compatible format.
func sendError(c *gin.Context, status int, errType, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    errType,
		},
	})
}
