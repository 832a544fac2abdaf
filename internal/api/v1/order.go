package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
)

type OrderHandler struct {
	settlementService service.SettlementService
	discountService   service.DiscountService
	adjustmentService service.PaymentAdjustmentService
	refundService     service.RefundService
	activityService   service.ActivityService
	log               *logger.Logger
}

func NewOrderHandler(
	settlementService service.SettlementService,
	discountService service.DiscountService,
	adjustmentService service.PaymentAdjustmentService,
	refundService service.RefundService,
	activityService service.ActivityService,
	log *logger.Logger,
) *OrderHandler {
	return &OrderHandler{
		settlementService: settlementService,
		discountService:   discountService,
		adjustmentService: adjustmentService,
		refundService:     refundService,
		activityService:   activityService,
		log:               log,
	}
}

// @Summary Preview stacked discounts for a cart
// @Description Discounts are computed without being committed
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body dto.ComputeDiscountsRequest true "Cart"
// @Success 200 {object} dto.ComputeDiscountsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /orders/discounts/preview [post]
func (h *OrderHandler) ComputeDiscounts(c *gin.Context) {
	var req dto.ComputeDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	instruments, err := dto.ToInstruments(req.Instruments)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.discountService.ComputeDiscounts(c.Request.Context(),
		req.CustomerID, req.Subtotal, req.Tax, req.Shipping, instruments)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.ComputeDiscountsResponse{Result: *result})
}

// @Summary Settle an order
// @Description Applies discounts, takes payment or credit, creates the invoice and awards points
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body dto.SettleOrderRequest true "Order"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) SettleOrder(c *gin.Context) {
	var req dto.SettleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.settlementService.SettleOrder(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to settle order",
			"error", err,
			"customer_id", req.CustomerID,
			"payment_method", req.PaymentMethod,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get an order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	resp, err := h.settlementService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List orders
// @Tags Orders
// @Produce json
// @Param filter query listQuery false "Filter"
// @Success 200 {object} dto.ListOrdersResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.settlementService.ListOrders(c.Request.Context(), &order.Filter{
		QueryFilter: q.toQueryFilter(),
		CustomerID:  q.CustomerID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Commit the discounts stored on an order
// @Description Re-running is safe; lines already committed are skipped
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.CommitDiscountsResponse
// @Router /orders/{id}/discounts/commit [post]
func (h *OrderHandler) CommitDiscounts(c *gin.Context) {
	resp, err := h.discountService.CommitOrderDiscounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Adjust the amount of a settled order
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body dto.CreateAdjustmentRequest true "Adjustment"
// @Success 201 {object} dto.AdjustmentResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /orders/{id}/adjustments [post]
func (h *OrderHandler) CreateAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.log.Errorw("failed to create payment adjustment", "error", err, "order_id", c.Param("id"))
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List the payment adjustments of an order
// @Tags Adjustments
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.ListAdjustmentsResponse
// @Router /orders/{id}/adjustments [get]
func (h *OrderHandler) ListAdjustments(c *gin.Context) {
	resp, err := h.adjustmentService.ListAdjustments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Refund an order
// @Tags Refunds
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body dto.CreateRefundRequest true "Refund"
// @Success 201 {object} dto.RefundResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /orders/{id}/refunds [post]
func (h *OrderHandler) CreateRefund(c *gin.Context) {
	var req dto.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.refundService.CreateRefund(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.log.Errorw("failed to refund order",
			"error", err,
			"order_id", c.Param("id"),
			"refund_method", req.RefundMethod,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get the amount still refundable on an order
// @Tags Refunds
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]string
// @Router /orders/{id}/refundable [get]
func (h *OrderHandler) GetRefundableAmount(c *gin.Context) {
	amount, err := h.refundService.GetRefundableAmount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":          c.Param("id"),
		"refundable_amount": amount,
	})
}

// @Summary List the audit trail of an order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.ListActivitiesResponse
// @Router /orders/{id}/activities [get]
func (h *OrderHandler) ListActivities(c *gin.Context) {
	resp, err := h.activityService.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
