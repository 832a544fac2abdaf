package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"

	"github.com/pharmalink/ledger/internal/api"
	"github.com/pharmalink/ledger/internal/api/cron"
	v1 "github.com/pharmalink/ledger/internal/api/v1"
	"github.com/pharmalink/ledger/internal/cache"
	"github.com/pharmalink/ledger/internal/config"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/email"
	"github.com/pharmalink/ledger/internal/integration/stripe"
	"github.com/pharmalink/ledger/internal/kafka"
	"github.com/pharmalink/ledger/internal/logger"
	"github.com/pharmalink/ledger/internal/postgres"
	"github.com/pharmalink/ledger/internal/pubsub"
	"github.com/pharmalink/ledger/internal/pubsub/memory"
	"github.com/pharmalink/ledger/internal/redis"
	"github.com/pharmalink/ledger/internal/repository/sqlstore"
	"github.com/pharmalink/ledger/internal/service"
)

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Storage
			postgres.NewClient,
			providePostgresIClient,
			provideRedisClient,
			provideLocker,
			cache.Initialize,

			// Messaging and integrations
			providePubSub,
			stripe.NewGateway,
			email.NewEmailClient,
			email.NewEmailFromClient,

			// Repositories
			sqlstore.NewCustomerRepository,
			sqlstore.NewCreditApplicationRepository,
			sqlstore.NewCreditLineRepository,
			sqlstore.NewCreditTermsRepository,
			sqlstore.NewOrderRepository,
			sqlstore.NewDiscountCommitRepository,
			provideOfferRepository,
			sqlstore.NewRewardRepository,
			sqlstore.NewInvoiceRepository,
			sqlstore.NewSequenceRepository,
			sqlstore.NewCreditMemoRepository,
			sqlstore.NewPaymentAdjustmentRepository,
			sqlstore.NewAccountTransactionRepository,
			sqlstore.NewActivityRepository,

			// Services
			service.NewCustomerService,
			service.NewCreditApplicationService,
			service.NewCreditLineService,
			service.NewPenaltyService,
			service.NewOfferService,
			service.NewRewardService,
			service.NewDiscountService,
			service.NewInvoiceService,
			service.NewSettlementService,
			service.NewPaymentAdjustmentService,
			service.NewCreditMemoService,
			service.NewRefundService,
			service.NewAccountTransactionService,
			service.NewARAgingService,
			service.NewActivityService,

			// Handlers
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startProfiling,
			startSentry,
			runMigrations,
			startServer,
		),
	)

	app.Run()
}

func providePostgresIClient(client *postgres.Client) postgres.IClient {
	return client
}

// provideRedisClient returns nil when Redis is disabled
func provideRedisClient(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideLocker(client *redis.Client) redis.Locker {
	if client == nil {
		return nil
	}
	return redis.NewLocker(client)
}

func providePubSub(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	var (
		ps  pubsub.PubSub
		err error
	)
	if cfg.Kafka.Enabled {
		ps, err = kafka.NewPubSubFromConfig(cfg, log, "ledger-"+string(cfg.Deployment.Mode))
		if err != nil {
			return nil, err
		}
	} else {
		ps = memory.NewPubSub(log)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})
	return ps, nil
}

func provideOfferRepository(client *postgres.Client, log *logger.Logger, cfg *config.Configuration, c cache.Cache) offer.Repository {
	return sqlstore.NewOfferRepository(client, log, c, cfg.Cache.OfferTTL)
}

func provideHandlers(
	log *logger.Logger,
	customerService service.CustomerService,
	applicationService service.CreditApplicationService,
	creditLineService service.CreditLineService,
	penaltyService service.PenaltyService,
	offerService service.OfferService,
	rewardService service.RewardService,
	discountService service.DiscountService,
	invoiceService service.InvoiceService,
	settlementService service.SettlementService,
	adjustmentService service.PaymentAdjustmentService,
	memoService service.CreditMemoService,
	refundService service.RefundService,
	accountService service.AccountTransactionService,
	agingService service.ARAgingService,
	activityService service.ActivityService,
) api.Handlers {
	return api.Handlers{
		Customer:   v1.NewCustomerHandler(customerService, rewardService, accountService, memoService, log),
		Credit:     v1.NewCreditHandler(applicationService, creditLineService, log),
		Order:      v1.NewOrderHandler(settlementService, discountService, adjustmentService, refundService, activityService, log),
		Invoice:    v1.NewInvoiceHandler(invoiceService, agingService, log),
		CreditMemo: v1.NewCreditMemoHandler(memoService, log),
		Offer:      v1.NewOfferHandler(offerService, log),
		CronCredit: cron.NewCreditCronHandler(penaltyService, applicationService, log),
	}
}

func startProfiling(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Pyroscope.Enabled {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.Pyroscope.ApplicationName,
		ServerAddress:   cfg.Pyroscope.ServerAddress,
		Tags:            map[string]string{"environment": string(cfg.Deployment.Environment)},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start pyroscope: %w", err)
	}

	log.Infow("pyroscope profiling started", "server_address", cfg.Pyroscope.ServerAddress)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return profiler.Stop()
		},
	})
	return nil
}

func startSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    cfg.Sentry.SampleRate > 0,
		TracesSampleRate: cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to init sentry: %w", err)
	}

	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
	return nil
}

func runMigrations(cfg *config.Configuration, client *postgres.Client, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}
	if err := sqlstore.Migrate(client); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Infow("database migrations applied", "driver", client.Driver())
	return nil
}

func startServer(lc fx.Lifecycle, cfg *config.Configuration, router *gin.Engine, client *postgres.Client, log *logger.Logger) {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			log.Infow("starting API server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("API server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return client.Close()
		},
	})
}
