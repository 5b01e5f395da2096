package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnoted/internal/paypal"
	"learnoted/internal/service"
)

const maxWebhookBodyBytes = int64(65536)

// SubscriptionHandler mantiene dependencias para endpoints de suscripción.
type SubscriptionHandler struct {
	logger  *zap.Logger
	subServ *service.SubscriptionService
}

// NewSubscriptionHandler crea una instancia de SubscriptionHandler.
func NewSubscriptionHandler(logger *zap.Logger, subServ *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger:  logger,
		subServ: subServ,
	}
}

// Activate maneja POST /subscriptions/activate.
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	var req struct {
		SubscriptionID string `json:"subscription_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid activate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing subscription id"})
		return
	}

	user, err := h.subServ.Activate(c.Request.Context(), claims.UserID, req.SubscriptionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrSubscriptionNotActive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "subscription not active"})
		case errors.Is(err, paypal.ErrUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			h.logger.Error("activate failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate subscription"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": user.SubscriptionPlan})
}

// Cancel maneja POST /subscriptions/cancel.
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	user, err := h.subServ.Cancel(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrNoActiveSubscription):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no active subscription"})
		case errors.Is(err, service.ErrProviderCancelFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not cancel with provider"})
		default:
			h.logger.Error("cancel failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel subscription"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": user.SubscriptionPlan})
}

// Status maneja GET /subscriptions/status. Leer el estado dispara el chequeo
// de reset mensual.
func (h *SubscriptionHandler) Status(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth"})
		return
	}

	user, err := h.subServ.Status(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("status failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":              user.SubscriptionPlan,
		"word_search_count": user.WordSearchCount,
		"reset_date":        user.MonthlyResetDate,
		"name":              user.DisplayName,
		"email":             user.Email,
	})
}

// PayPalWebhook maneja POST /webhooks/paypal. Responde 200 a todo evento
// verificado, incluso tipos no manejados, para evitar reintentos en cadena.
func (h *SubscriptionHandler) PayPalWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("webhook body read failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	params := paypal.VerifyParams{
		TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
		TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
		TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		CertURL:          c.GetHeader("Paypal-Cert-Url"),
		AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
		EventBody:        json.RawMessage(body),
	}

	if err := h.subServ.ProcessWebhook(c.Request.Context(), params); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			h.logger.Warn("webhook signature rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		case errors.Is(err, service.ErrInvalidWebhookPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		default:
			h.logger.Error("webhook processing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
