package handler

import (
	"errors"
	"io"
	"net/http"
	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/payment"
	"storefront-service/prometheus"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// PaymentHandler reconciles provider transactions against orders. It owns the
// gateway exclusively; the gateway is constructed once at startup.
type PaymentHandler struct {
	gateway payment.Gateway
}

// NewPaymentHandler returns a handler bound to the given provider gateway.
func NewPaymentHandler(gateway payment.Gateway) *PaymentHandler {
	return &PaymentHandler{gateway: gateway}
}

// AttachOrderRequest defines the structure for attach-order requests
type AttachOrderRequest struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

// AttachOrder attaches a provider transaction to an order and marks the order
// paid when the provider reports success. Repeated calls with the same intent
// id update the same payment row.
func (h *PaymentHandler) AttachOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req AttachOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "Invalid request data",
		})
	}
	if req.OrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "orderId is required",
		})
	}

	intentID := req.PaymentIntentID
	if intentID == "" && req.ClientSecret != "" {
		intentID = payment.DeriveIntentID(req.ClientSecret)
	}
	if intentID == "" || !strings.HasPrefix(intentID, "pi_") {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "Provide paymentIntentId or clientSecret",
		})
	}

	db := database.GetDB()
	var order model.Order
	if err := db.Where("id = ?", req.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Order not found", zap.String("order_id", req.OrderID))
			return c.JSON(http.StatusNotFound, echo.Map{
				"ok": false, "error": "Order not found",
			})
		}
		log.Error("Failed to load order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to attach order",
		})
	}

	intent, err := h.gateway.RetrieveIntent(intentID)
	if err != nil {
		log.Error("Payment provider call failed",
			zap.String("payment_intent_id", intentID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{
			"ok": false, "error": "Payment provider unavailable",
		})
	}

	status := payment.MapIntentStatus(intent.Status)
	currency := intent.Currency
	if currency == "" {
		currency = "usd"
	}

	// Upsert keyed by the globally unique provider intent id
	defer prometheus.TrackDBOperation("attach_payment")(time.Now())
	var pay model.Payment
	err = db.Where("stripe_payment_intent_id = ?", intentID).First(&pay).Error
	switch {
	case err == nil:
		pay.OrderID = order.ID
		pay.AmountCents = intent.AmountCents
		pay.Currency = currency
		pay.Status = status
		if req.ClientSecret != "" {
			pay.ClientSecret = &req.ClientSecret
		}
		err = db.Save(&pay).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		pay = model.Payment{
			OrderID:               order.ID,
			StripePaymentIntentID: intentID,
			AmountCents:           intent.AmountCents,
			Currency:              currency,
			Status:                status,
		}
		if req.ClientSecret != "" {
			pay.ClientSecret = &req.ClientSecret
		}
		err = db.Create(&pay).Error
	}
	if err != nil {
		log.Error("Failed to upsert payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to attach order",
		})
	}

	if status == model.PaymentStatusSucceeded && order.PaymentStatus != model.OrderPaymentStatusPaid {
		err = db.Model(&model.Order{}).
			Where("id = ?", order.ID).
			Update("payment_status", model.OrderPaymentStatusPaid).Error
		if err != nil {
			log.Error("Failed to mark order paid", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"ok": false, "error": "Failed to attach order",
			})
		}
	}

	prometheus.RecordPaymentOperation("attach")
	log.Info("Payment attached",
		zap.String("order_id", order.ID),
		zap.String("payment_intent_id", intentID),
		zap.String("status", status))
	return c.JSON(http.StatusOK, echo.Map{
		"ok":                    true,
		"orderId":               order.ID,
		"paymentId":             pay.ID,
		"stripePaymentIntentId": intentID,
		"status":                pay.Status,
	})
}

// Webhook consumes signed asynchronous provider notifications. The raw body is
// required for signature verification. Verification failures are acknowledged
// with received:false rather than an error status so the notifier stops
// retrying a permanent mismatch.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	log := logger.FromContext(c)

	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{
			"received": false, "error": "Unable to read request body",
		})
	}

	signature := c.Request().Header.Get(StripeSignatureHeader)
	if signature == "" {
		prometheus.RecordWebhookEvent("signature_failure")
		return c.JSON(http.StatusOK, echo.Map{
			"received": false, "error": "Missing stripe-signature header",
		})
	}

	event, err := h.gateway.VerifyWebhook(rawBody, signature)
	if err != nil {
		prometheus.RecordWebhookEvent("signature_failure")
		log.Warn("Webhook signature verification failed", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{
			"received": false, "error": "Signature verification failed: " + err.Error(),
		})
	}

	if event.Type == payment.EventTypeIntentSucceeded {
		if err := h.applyIntentSucceeded(c, &event.Intent); err != nil {
			log.Error("Failed to apply webhook", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"received": false, "error": "Failed to process event",
			})
		}
	} else {
		prometheus.RecordWebhookEvent("ignored")
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

// applyIntentSucceeded updates the matching payment row and its order in one
// transaction. A succeeded intent with no local payment row is acknowledged
// without side effects (an out-of-band transaction).
func (h *PaymentHandler) applyIntentSucceeded(c echo.Context, intent *payment.Intent) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var pay model.Payment
	err := db.Where("stripe_payment_intent_id = ?", intent.ID).First(&pay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prometheus.RecordWebhookEvent("unmatched")
		log.Info("Webhook for unknown payment intent",
			zap.String("payment_intent_id", intent.ID))
		return nil
	}
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("webhook_confirm")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Payment{}).
			Where("stripe_payment_intent_id = ?", intent.ID).
			Updates(map[string]interface{}{
				"status":       model.PaymentStatusSucceeded,
				"amount_cents": intent.AmountCents,
				"currency":     intent.Currency,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Order{}).
			Where("id = ?", pay.OrderID).
			Update("payment_status", model.OrderPaymentStatusPaid).Error
	})
	if err != nil {
		return err
	}

	prometheus.RecordWebhookEvent("processed")
	log.Info("Payment confirmed via webhook",
		zap.String("payment_intent_id", intent.ID),
		zap.String("order_id", pay.OrderID))
	return nil
}
