package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pharmalink/ledger/internal/api/cron"
	v1 "github.com/pharmalink/ledger/internal/api/v1"
	"github.com/pharmalink/ledger/internal/config"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/rest/middleware"
	"github.com/pharmalink/ledger/internal/types"
)

type Handlers struct {
	Customer   *v1.CustomerHandler
	Credit     *v1.CreditHandler
	Order      *v1.OrderHandler
	Invoice    *v1.InvoiceHandler
	CreditMemo *v1.CreditMemoHandler
	Offer      *v1.OfferHandler

	CronCredit *cron.CreditCronHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Environment == types.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log.GetGinLogger()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestContextMiddleware(),
		middleware.SentryTenantContextMiddleware,
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1Router := router.Group("/v1")

	customers := v1Router.Group("/customers")
	{
		customers.POST("", handlers.Customer.CreateCustomer)
		customers.GET("/:id", handlers.Customer.GetCustomer)
		customers.GET("/:id/credit_line", handlers.Credit.GetCreditLine)
		customers.GET("/:id/rewards", handlers.Customer.GetRewardLedger)
		customers.POST("/:id/rewards/redeem", handlers.Customer.RedeemRewards)
		customers.GET("/:id/transactions", handlers.Customer.ListTransactions)
		customers.GET("/:id/credit_memos", handlers.Customer.ListCreditMemos)
	}

	credit := v1Router.Group("/credit")
	{
		credit.POST("/applications", handlers.Credit.SubmitApplication)
		credit.GET("/applications", handlers.Credit.ListApplications)
		credit.GET("/applications/:id", handlers.Credit.GetApplication)
		credit.POST("/applications/:id/start_review", handlers.Credit.StartReview)
		credit.POST("/applications/:id/review", handlers.Credit.ReviewApplication)
		credit.POST("/usage", handlers.Credit.RecordCreditUsage)
		credit.POST("/repayment", handlers.Credit.RecordCreditRepayment)
	}

	orders := v1Router.Group("/orders")
	{
		orders.POST("", handlers.Order.SettleOrder)
		orders.GET("", handlers.Order.ListOrders)
		orders.POST("/discounts/preview", handlers.Order.ComputeDiscounts)
		orders.GET("/:id", handlers.Order.GetOrder)
		orders.GET("/:id/invoice", handlers.Invoice.GetInvoiceByOrder)
		orders.POST("/:id/discounts/commit", handlers.Order.CommitDiscounts)
		orders.POST("/:id/adjustments", handlers.Order.CreateAdjustment)
		orders.GET("/:id/adjustments", handlers.Order.ListAdjustments)
		orders.POST("/:id/refunds", handlers.Order.CreateRefund)
		orders.GET("/:id/refundable", handlers.Order.GetRefundableAmount)
		orders.GET("/:id/activities", handlers.Order.ListActivities)
	}

	invoices := v1Router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/payments", handlers.Invoice.RecordPayment)
	}

	memos := v1Router.Group("/credit_memos")
	{
		memos.POST("", handlers.CreditMemo.IssueCreditMemo)
		memos.GET("/:id", handlers.CreditMemo.GetCreditMemo)
		memos.POST("/:id/apply", handlers.CreditMemo.ApplyCreditMemo)
	}

	offers := v1Router.Group("/offers")
	{
		offers.POST("", handlers.Offer.CreateOffer)
		offers.GET("/:id", handlers.Offer.GetOffer)
	}

	reports := v1Router.Group("/reports")
	{
		reports.GET("/ar_aging", handlers.Invoice.GetAging)
		reports.GET("/ar_aging/export", handlers.Invoice.ExportAging)
	}

	// Cron routes are called by the external scheduler
	cronGroup := router.Group("/cron")
	{
		cronGroup.POST("/penalties", handlers.CronCredit.CalculatePenalties)
		cronGroup.POST("/credit_applications/expire", handlers.CronCredit.ExpireApplications)
	}

	return router
}
