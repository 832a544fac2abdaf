package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
	"github.com/pharmalink/ledger/internal/types"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	agingService   service.ARAgingService
	log            *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, agingService service.ARAgingService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		agingService:   agingService,
		log:            log,
	}
}

// @Summary Get an invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the invoice raised for an order
// @Tags Invoices
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /orders/{id}/invoice [get]
func (h *InvoiceHandler) GetInvoiceByOrder(c *gin.Context) {
	resp, err := h.invoiceService.GetInvoiceByOrderID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param filter query types.InvoiceFilter false "Filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Router /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	filter := types.NewInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Record a payment against an invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payment body dto.RecordInvoicePaymentRequest true "Payment"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordInvoicePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.invoiceService.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.log.Errorw("failed to record invoice payment", "error", err, "invoice_id", c.Param("id"))
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Accounts receivable aging report
// @Tags Reports
// @Produce json
// @Param as_of query string false "Report date (YYYY-MM-DD)"
// @Param customer_id query string false "Customer ID"
// @Success 200 {object} dto.AgingReportResponse
// @Router /reports/ar_aging [get]
func (h *InvoiceHandler) GetAging(c *gin.Context) {
	var req dto.AgingReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid report parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.agingService.GetAging(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Export the aging report as CSV
// @Tags Reports
// @Produce text/csv
// @Param as_of query string false "Report date (YYYY-MM-DD)"
// @Param customer_id query string false "Customer ID"
// @Success 200 {file} file
// @Router /reports/ar_aging/export [get]
func (h *InvoiceHandler) ExportAging(c *gin.Context) {
	var req dto.AgingReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid report parameters").
			Mark(ierr.ErrValidation))
		return
	}

	var buf bytes.Buffer
	if err := h.agingService.ExportAgingCSV(c.Request.Context(), req, &buf); err != nil {
		h.log.Errorw("failed to export aging report", "error", err)
		c.Error(err)
		return
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ar_aging_%s.csv", asOf.Format(time.DateOnly)))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
