package cron

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/dto"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/service"
)

// CreditCronHandler exposes the daily credit jobs to an external scheduler
type CreditCronHandler struct {
	penaltyService     service.PenaltyService
	applicationService service.CreditApplicationService
	log                *logger.Logger
}

func NewCreditCronHandler(
	penaltyService service.PenaltyService,
	applicationService service.CreditApplicationService,
	log *logger.Logger,
) *CreditCronHandler {
	return &CreditCronHandler{
		penaltyService:     penaltyService,
		applicationService: applicationService,
		log:                log,
	}
}

// @Summary Accrue late penalties on overdue invoices
// @Tags Cron
// @Accept json
// @Produce json
// @Param request body dto.CalculatePenaltiesRequest false "Run date"
// @Success 200 {object} dto.CalculatePenaltiesResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /cron/penalties [post]
func (h *CreditCronHandler) CalculatePenalties(c *gin.Context) {
	h.log.Infow("starting penalty calculation cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.CalculatePenaltiesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.penaltyService.CalculatePenalties(c.Request.Context(), asOfOrNow(req.AsOf))
	if err != nil {
		h.log.Errorw("penalty calculation failed", "error", err)
		c.Error(err)
		return
	}

	h.log.Infow("completed penalty calculation cron job",
		"accrued", resp.Accrued,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
		"total_penalty", resp.TotalPenalty,
	)
	c.JSON(http.StatusOK, resp)
}

// @Summary Expire stale credit applications
// @Tags Cron
// @Accept json
// @Produce json
// @Param request body dto.ExpireCreditApplicationsRequest false "Run date"
// @Success 200 {object} dto.ExpireCreditApplicationsResponse
// @Router /cron/credit_applications/expire [post]
func (h *CreditCronHandler) ExpireApplications(c *gin.Context) {
	h.log.Infow("starting credit application expiry cron job", "time", time.Now().UTC().Format(time.RFC3339))

	var req dto.ExpireCreditApplicationsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Invalid request format").
				Mark(ierr.ErrValidation))
			return
		}
	}

	resp, err := h.applicationService.ExpireApplications(c.Request.Context(), asOfOrNow(req.AsOf))
	if err != nil {
		c.Error(err)
		return
	}

	h.log.Infow("completed credit application expiry cron job", "expired", len(resp.Expired))
	c.JSON(http.StatusOK, resp)
}

func asOfOrNow(asOf *time.Time) time.Time {
	if asOf != nil {
		return asOf.UTC()
	}
	return time.Now().UTC()
}
