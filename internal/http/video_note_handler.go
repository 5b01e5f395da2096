package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnoted/internal/service"
)

// VideoNoteHandler mantiene dependencias para endpoints de notas de video.
type VideoNoteHandler struct {
	logger    *zap.Logger
	notesServ *service.VideoNoteService
}

func NewVideoNoteHandler(logger *zap.Logger, notesServ *service.VideoNoteService) *VideoNoteHandler {
	return &VideoNoteHandler{
		logger:    logger,
		notesServ: notesServ,
	}
}

// Create maneja POST /youtube/notes.
func (h *VideoNoteHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		VideoID          string `json:"video_id" binding:"required"`
		Title            string `json:"title"`
		TimestampSeconds int    `json:"timestamp_seconds"`
		Note             string `json:"note" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid video note request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	note, err := h.notesServ.Create(c.Request.Context(), claims.UserID, service.CreateVideoNoteInput{
		VideoID:          req.VideoID,
		Title:            req.Title,
		TimestampSeconds: req.TimestampSeconds,
		Note:             req.Note,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidVideoNote) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid video note"})
			return
		}
		h.logger.Error("create video note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create video note"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"note": note})
}

// List maneja GET /youtube/notes, opcionalmente filtrado por ?video_id=.
func (h *VideoNoteHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	notes, err := h.notesServ.List(c.Request.Context(), claims.UserID, c.Query("video_id"))
	if err != nil {
		h.logger.Error("list video notes failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list video notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// Delete maneja DELETE /youtube/notes/:id.
func (h *VideoNoteHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	if err := h.notesServ.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrVideoNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video note not found"})
			return
		}
		h.logger.Error("delete video note failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete video note"})
		return
	}
	c.Status(http.StatusNoContent)
}
