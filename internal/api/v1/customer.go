package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
)

type CustomerHandler struct {
	customerService service.CustomerService
	rewardService   service.RewardService
	accountService  service.AccountTransactionService
	memoService     service.CreditMemoService
	log             *logger.Logger
}

func NewCustomerHandler(
	customerService service.CustomerService,
	rewardService service.RewardService,
	accountService service.AccountTransactionService,
	memoService service.CreditMemoService,
	log *logger.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		rewardService:   rewardService,
		accountService:  accountService,
		memoService:     memoService,
		log:             log,
	}
}

// @Summary Create a customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param customer body dto.CreateCustomerRequest true "Customer"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to create customer", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	resp, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the reward point ledger of a customer
// @Tags Rewards
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.RewardLedgerResponse
// @Router /customers/{id}/rewards [get]
func (h *CustomerHandler) GetRewardLedger(c *gin.Context) {
	resp, err := h.rewardService.GetLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Redeem reward points for a voucher
// @Tags Rewards
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body dto.RedeemRewardRequest true "Points to redeem"
// @Success 201 {object} dto.RedemptionResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /customers/{id}/rewards/redeem [post]
func (h *CustomerHandler) RedeemRewards(c *gin.Context) {
	var req dto.RedeemRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.rewardService.RedeemPoints(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.log.Errorw("failed to redeem reward points", "error", err, "customer_id", c.Param("id"))
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List account transactions with the running balance
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Param filter query listQuery false "Pagination"
// @Success 200 {object} dto.ListAccountTransactionsResponse
// @Router /customers/{id}/transactions [get]
func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.accountService.ListTransactions(c.Request.Context(), c.Param("id"), q.toQueryFilter())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List credit memos issued to a customer
// @Tags CreditMemos
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.ListCreditMemosResponse
// @Router /customers/{id}/credit_memos [get]
func (h *CustomerHandler) ListCreditMemos(c *gin.Context) {
	resp, err := h.memoService.ListCreditMemos(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
