package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/domain"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/invoice"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/payment"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/repository"
	"github.com/Dattaharshithreddy/wishlist2cart-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const userOrdersTTL = 10 * time.Second

// Cache is the part of *redis.Client the handler uses. A nil Cache disables
// caching of user order lists.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Handler struct {
	orders   *services.OrderService
	webhooks *services.WebhookService
	invoices *services.InvoiceService
	rdb      Cache
	logger   *zap.Logger
}

func NewHandler(o *services.OrderService, w *services.WebhookService, i *services.InvoiceService, rdb Cache, logger *zap.Logger) *Handler {
	return &Handler{orders: o, webhooks: w, invoices: i, rdb: rdb, logger: logger}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/create-order", h.CreateOrder)
	r.POST("/payment-success-webhook", h.PaymentWebhook)
	r.POST("/send-invoice", h.SendInvoice)

	r.POST("/orders", h.PlaceOrder)
	r.GET("/orders/:id", h.GetOrder)
	r.GET("/orders/user/:userId", h.GetOrdersByUser)
	r.PATCH("/orders/:id/status", h.UpdateStatus)
	r.POST("/orders/:id/cancel", h.CancelOrder)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is required"})
		return
	}

	gw, err := h.orders.CreatePaymentOrder(c.Request.Context(), services.CreatePaymentOrderInput{
		Amount:   req.Amount.Decimal,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		UserID:   req.UserID,
		Items:    toItems(req.Items),
		Address:  req.Address,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateUser(req.UserID)
	c.JSON(http.StatusOK, gw)
}

// PaymentWebhook must see the body exactly as the gateway signed it, so it
// is read raw and never bound.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	res, err := h.webhooks.HandlePaymentWebhook(c.Request.Context(), body, c.GetHeader(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrMissingSignature) || errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}

	if res.Outcome == services.OutcomeApplied {
		h.invalidateUser(res.UserID)
	}
	c.JSON(http.StatusOK, gin.H{"status": res.Outcome})
}

func (h *Handler) SendInvoice(c *gin.Context) {
	var req SendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Order == nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order and email are required"})
		return
	}
	if !req.Order.Total.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": invoice.ErrInvalidOrder.Error() + ": total is required"})
		return
	}

	if err := h.invoices.SendInvoice(c.Request.Context(), req.Order.toDomain(), req.Email); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "invoice sent"})
}

func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.PlaceCashOrder(c.Request.Context(), services.PlaceOrderInput{
		UserID:  req.UserID,
		Items:   toItems(req.Items),
		Address: req.Address,
		Total:   req.Total.Decimal,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateUser(order.UserID)
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrdersByUser(c *gin.Context) {
	userID := c.Param("userId")
	ctx := c.Request.Context()
	cacheKey := userOrdersKey(userID)

	if h.rdb != nil {
		if b, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var orders []domain.Order
			if err := json.Unmarshal(b, &orders); err == nil {
				c.JSON(http.StatusOK, orders)
				return
			}
		}
	}

	orders, err := h.orders.ListUserOrders(ctx, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(orders); err == nil {
			h.rdb.Set(ctx, cacheKey, data, userOrdersTTL)
		}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), next)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateUser(order.UserID)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) CancelOrder(c *gin.Context) {
	order, err := h.orders.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.invalidateUser(order.UserID)
	c.JSON(http.StatusOK, order)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidItems),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, invoice.ErrInvalidOrder):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, services.ErrStatusConflict),
		errors.Is(err, repository.ErrDuplicateOrder):
		status = http.StatusConflict
	case errors.Is(err, services.ErrGateway):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) invalidateUser(userID string) {
	if h.rdb == nil || userID == "" {
		return
	}
	h.rdb.Del(context.Background(), userOrdersKey(userID))
}

func userOrdersKey(userID string) string {
	return "orders:user:" + userID
}
