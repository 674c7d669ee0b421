package httpapi

import (
	"io"
	"net/http"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

type billingHandler struct {
	subs     Subscriptions
	keys     KeyRedeemer
	payments Payments
}

type redeemRequest struct {
	Key string `json:"key" binding:"required"`
}

type checkoutRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

func (h *billingHandler) ListPlans(c *gin.Context) {
	plans, err := h.subs.ListPlans(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, plans)
}

func (h *billingHandler) Current(c *gin.Context) {
	sum, err := h.subs.Current(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

func (h *billingHandler) Redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	sub, err := h.keys.Redeem(c.Request.Context(), userID(c), req.Key)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, sub)
}

func (h *billingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	p, err := h.payments.CreateCheckout(c.Request.Context(), userID(c), req.PlanID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (h *billingHandler) Status(c *gin.Context) {
	st, err := h.payments.Status(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// Webhook verifies the signature over the raw body, so the body is read
// before any decoding.
func (h *billingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "unreadable request body")
		return
	}
	p, err := h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader(common.WebhookSignatureHeaderName))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
