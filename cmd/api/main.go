package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	"marketplace/internal/infra/notify"
	"marketplace/internal/infra/payment"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/scheduler"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
)

func main() {
	//.envは無ければ無いでいい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.GoEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.StoreRevenue{},
		&model.Category{},
		&model.Tag{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Address{},
		&model.InventoryTransaction{},
		&model.LowStockAlert{},
		&model.PaymentTransaction{},
	); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	tm := infraRepo.NewTxManagerGorm(gormDB)
	notifier := notify.NewLogNotifier(logger)

	gateway, err := payment.NewStripeGateway(payment.StripeGatewayConfig{
		APIKey: cfg.StripeSecretKey,
	})
	if err != nil {
		logger.Fatal("stripe gateway init failed", zap.Error(err))
	}

	paymentUC := usecase.NewPaymentUsecase(tm, gateway, notifier, logger, cfg.Currency)
	returnUC := usecase.NewReturnUsecase(tm, paymentUC, notifier, logger, cfg.ReturnReminderMaxAttempts)
	orderUC := usecase.NewOrderUsecase(tm, returnUC, notifier, logger, cfg.ShippingFlatRate)
	inventoryUC := usecase.NewInventoryUsecase(tm, notifier, logger)
	bulkUC := usecase.NewBulkProductUsecase(tm, notifier, logger)

	sched := scheduler.New(inventoryUC, returnUC, logger, cfg.ReminderInterval, cfg.DigestInterval)
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	go sched.Run(schedCtx)

	e := server.New(
		handler.NewOrderHandler(orderUC, returnUC),
		handler.NewInventoryHandler(inventoryUC),
		handler.NewBulkProductHandler(bulkUC),
		handler.NewPaymentHandler(paymentUC, cfg.StripeWebhookSecret, logger),
	)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(goEnv string) (*zap.Logger, error) {
	if goEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
