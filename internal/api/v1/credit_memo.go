package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
)

type CreditMemoHandler struct {
	service service.CreditMemoService
	log     *logger.Logger
}

func NewCreditMemoHandler(service service.CreditMemoService, log *logger.Logger) *CreditMemoHandler {
	return &CreditMemoHandler{
		service: service,
		log:     log,
	}
}

// @Summary Issue a credit memo
// @Tags CreditMemos
// @Accept json
// @Produce json
// @Param memo body dto.IssueCreditMemoRequest true "Credit memo"
// @Success 201 {object} dto.CreditMemoResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /credit_memos [post]
func (h *CreditMemoHandler) IssueCreditMemo(c *gin.Context) {
	var req dto.IssueCreditMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.IssueCreditMemo(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to issue credit memo", "error", err, "customer_id", req.CustomerID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a credit memo
// @Tags CreditMemos
// @Produce json
// @Param id path string true "Credit memo ID"
// @Success 200 {object} dto.CreditMemoResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /credit_memos/{id} [get]
func (h *CreditMemoHandler) GetCreditMemo(c *gin.Context) {
	resp, err := h.service.GetCreditMemo(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Apply a credit memo to an order or invoice
// @Tags CreditMemos
// @Accept json
// @Produce json
// @Param id path string true "Credit memo ID"
// @Param request body dto.ApplyCreditMemoRequest true "Application"
// @Success 200 {object} dto.CreditMemoResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /credit_memos/{id}/apply [post]
func (h *CreditMemoHandler) ApplyCreditMemo(c *gin.Context) {
	var req dto.ApplyCreditMemoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ApplyCreditMemo(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
