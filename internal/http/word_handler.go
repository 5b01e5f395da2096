package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnoted/internal/service"
)

// WordHandler mantiene dependencias para endpoints de vocabulario.
type WordHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	wordServ *service.WordService
	quota    *service.QuotaService
}

// NewWordHandler crea una instancia de WordHandler con dependencias necesarias.
func NewWordHandler(logger *zap.Logger, userServ *service.UserService, wordServ *service.WordService, quota *service.QuotaService) *WordHandler {
	return &WordHandler{
		logger:   logger,
		userServ: userServ,
		wordServ: wordServ,
		quota:    quota,
	}
}

// Search maneja POST /words/search: la búsqueda medida por cuota.
func (h *WordHandler) Search(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		Term string `json:"term" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("load user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search word"})
		return
	}

	word, user, err := h.wordServ.Lookup(c.Request.Context(), user, req.Term)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTerm):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid term"})
		case errors.Is(err, service.ErrQuotaExceeded):
			c.JSON(http.StatusForbidden, gin.H{
				"error":             "monthly search limit reached",
				"limit":             h.quota.Limit(),
				"word_search_count": user.WordSearchCount,
			})
		default:
			h.logger.Error("word lookup failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not resolve definition"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"word": word, "word_search_count": user.WordSearchCount})
}

// List maneja GET /words.
func (h *WordHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	words, err := h.wordServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list words failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list words"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

// Similar maneja GET /words/:id/similar.
func (h *WordHandler) Similar(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	k, _ := strconv.Atoi(c.DefaultQuery("k", "5"))
	words, err := h.wordServ.Similar(c.Request.Context(), claims.UserID, c.Param("id"), k)
	if err != nil {
		if errors.Is(err, service.ErrWordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
			return
		}
		h.logger.Error("similar words failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search similar words"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

// Delete maneja DELETE /words/:id.
func (h *WordHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	if err := h.wordServ.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrWordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
			return
		}
		h.logger.Error("delete word failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete word"})
		return
	}
	c.Status(http.StatusNoContent)
}
