package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
	"github.com/pharmalink/ledger/internal/types"
)

type CreditHandler struct {
	applicationService service.CreditApplicationService
	creditLineService  service.CreditLineService
	log                *logger.Logger
}

func NewCreditHandler(
	applicationService service.CreditApplicationService,
	creditLineService service.CreditLineService,
	log *logger.Logger,
) *CreditHandler {
	return &CreditHandler{
		applicationService: applicationService,
		creditLineService:  creditLineService,
		log:                log,
	}
}

// @Summary Submit a credit application
// @Tags Credit
// @Accept json
// @Produce json
// @Param application body dto.SubmitCreditApplicationRequest true "Application"
// @Success 201 {object} dto.CreditApplicationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /credit/applications [post]
func (h *CreditHandler) SubmitApplication(c *gin.Context) {
	var req dto.SubmitCreditApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.applicationService.SubmitApplication(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to submit credit application", "error", err, "customer_id", req.CustomerID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a credit application
// @Tags Credit
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.CreditApplicationResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /credit/applications/{id} [get]
func (h *CreditHandler) GetApplication(c *gin.Context) {
	resp, err := h.applicationService.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List credit applications
// @Tags Credit
// @Produce json
// @Param filter query listQuery false "Filter"
// @Success 200 {object} dto.ListCreditApplicationsResponse
// @Router /credit/applications [get]
func (h *CreditHandler) ListApplications(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	filter := &creditapplication.Filter{
		QueryFilter: q.toQueryFilter(),
		CustomerID:  q.CustomerID,
	}
	if q.Status != "" {
		filter.Statuses = []types.CreditApplicationStatus{types.CreditApplicationStatus(q.Status)}
	}

	resp, err := h.applicationService.ListApplications(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Move a pending application under review
// @Tags Credit
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} dto.CreditApplicationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /credit/applications/{id}/start_review [post]
func (h *CreditHandler) StartReview(c *gin.Context) {
	resp, err := h.applicationService.StartReview(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Approve or reject a credit application
// @Tags Credit
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param decision body dto.ReviewCreditApplicationRequest true "Decision"
// @Success 200 {object} dto.ReviewCreditApplicationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /credit/applications/{id}/review [post]
func (h *CreditHandler) ReviewApplication(c *gin.Context) {
	var req dto.ReviewCreditApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.applicationService.ReviewApplication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.log.Errorw("failed to review credit application", "error", err, "application_id", c.Param("id"))
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the credit line of a customer
// @Tags Credit
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.CreditLineResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /customers/{id}/credit_line [get]
func (h *CreditHandler) GetCreditLine(c *gin.Context) {
	resp, err := h.creditLineService.GetCreditLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Draw down a customer credit line
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.CreditUsageRequest true "Usage"
// @Success 200 {object} dto.CreditLineResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /credit/usage [post]
func (h *CreditHandler) RecordCreditUsage(c *gin.Context) {
	req, ok := h.bindUsage(c)
	if !ok {
		return
	}

	line, err := h.creditLineService.RecordCreditUsage(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.CreditLineResponse{CreditLine: line})
}

// @Summary Release used credit after a repayment
// @Tags Credit
// @Accept json
// @Produce json
// @Param request body dto.CreditUsageRequest true "Repayment"
// @Success 200 {object} dto.CreditLineResponse
// @Router /credit/repayment [post]
func (h *CreditHandler) RecordCreditRepayment(c *gin.Context) {
	req, ok := h.bindUsage(c)
	if !ok {
		return
	}

	line, err := h.creditLineService.RecordCreditRepayment(c.Request.Context(), req.CustomerID, req.Amount)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, &dto.CreditLineResponse{CreditLine: line})
}

func (h *CreditHandler) bindUsage(c *gin.Context) (*dto.CreditUsageRequest, bool) {
	var req dto.CreditUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return nil, false
	}
	return &req, true
}
