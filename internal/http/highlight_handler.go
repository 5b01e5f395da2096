package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnoted/internal/service"
)

// HighlightHandler mantiene dependencias para endpoints de resaltados.
type HighlightHandler struct {
	logger        *zap.Logger
	highlightServ *service.HighlightService
}

func NewHighlightHandler(logger *zap.Logger, highlightServ *service.HighlightService) *HighlightHandler {
	return &HighlightHandler{
		logger:        logger,
		highlightServ: highlightServ,
	}
}

// Create maneja POST /highlights.
func (h *HighlightHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		URL   string `json:"url" binding:"required"`
		Text  string `json:"text" binding:"required"`
		Color string `json:"color"`
		Note  string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid highlight request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	highlight, err := h.highlightServ.Create(c.Request.Context(), claims.UserID, service.CreateHighlightInput{
		URL:   req.URL,
		Text:  req.Text,
		Color: req.Color,
		Note:  req.Note,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidHighlight) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid highlight"})
			return
		}
		h.logger.Error("create highlight failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create highlight"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"highlight": highlight})
}

// List maneja GET /highlights, opcionalmente filtrado por ?url=.
func (h *HighlightHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	highlights, err := h.highlightServ.List(c.Request.Context(), claims.UserID, c.Query("url"))
	if err != nil {
		h.logger.Error("list highlights failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list highlights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"highlights": highlights})
}

// Delete maneja DELETE /highlights/:id.
func (h *HighlightHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	if err := h.highlightServ.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrHighlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "highlight not found"})
			return
		}
		h.logger.Error("delete highlight failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete highlight"})
		return
	}
	c.Status(http.StatusNoContent)
}
