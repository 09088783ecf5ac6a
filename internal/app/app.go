package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconfig "powerbill/internal/config"
	"powerbill/internal/db"
	"powerbill/internal/events"
	httpserver "powerbill/internal/http"
	"powerbill/internal/http/handlers"
	"powerbill/internal/http/middleware"
	"powerbill/internal/notify"
	"powerbill/internal/password"
	"powerbill/internal/redisdb"
	"powerbill/internal/repository"
	"powerbill/internal/scheduler"
	"powerbill/internal/seed"
	"powerbill/internal/service"
	"powerbill/internal/session"
)

const (
	simulatedMeterDelay   = time.Second
	simulatedPaymentDelay = 2 * time.Second
	reminderInterval      = time.Hour
	hubPingInterval       = 30 * time.Second
)

// App wires dependencies for the billing service.
type App struct {
	server    *httpserver.Server
	scheduler *scheduler.Monthly
	hub       *notify.Hub
	reminder  *notify.Reminder
	db        *sql.DB
	redis     *redis.Client
	publisher *events.KafkaPublisher
	logger    *zap.Logger
}

// New builds application graph and seeds demo data on an empty database.
func New(ctx context.Context, cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisdb.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	billRepo := repository.NewBillRepository(sqlDB)
	meterRepo := repository.NewMeterReadingRepository(sqlDB)

	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	sessions := session.NewStore(redisClient, cfg.JWTExpiration())
	authSvc := service.NewAuthService(userRepo, sessions, hasher, tokenSvc, logger)

	var publisher events.Publisher = events.NoopPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		kafkaPublisher, err = events.NewKafkaPublisher(brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			redisClient.Close()
			sqlDB.Close()
			return nil, err
		}
		publisher = kafkaPublisher
	}

	rates := service.Rates{UnitRate: cfg.Billing.UnitRate, TaxRate: cfg.Billing.TaxRate}
	billingSvc := service.NewBillingService(billRepo, rates, publisher, logger)
	taxSvc := service.NewTaxReportService(billRepo)
	meterSvc := service.NewMeterService(meterRepo, service.NewSimulatedMeterGateway(simulatedMeterDelay), logger)
	paymentSvc := service.NewPaymentService(billRepo, service.NewSimulatedPaymentGateway(simulatedPaymentDelay), publisher, logger)

	if err := seed.Ensure(ctx, userRepo, billRepo, hasher, rates, logger); err != nil {
		logger.Warn("failed to seed demo data", zap.Error(err))
	}

	monthly := scheduler.NewMonthly(
		userRepo,
		billRepo,
		billingSvc,
		scheduler.NewSimulatedUnitsSource(),
		scheduler.NewRedisCheckStore(redisClient),
		cfg.Scheduler.CheckInterval,
		logger,
	)

	hub := notify.NewHub(hubPingInterval, logger)
	reminder := notify.NewReminder(hub, billRepo, reminderInterval, logger)

	auth := middleware.Auth(tokenSvc, sessions)
	routes := httpserver.Routes{
		Signup:          handlers.NewSignupHandler(authSvc),
		Login:           handlers.NewLoginHandler(authSvc),
		Logout:          handlers.NewLogoutHandler(authSvc),
		Profile:         handlers.NewProfileHandler(authSvc),
		UpdateProfile:   handlers.NewUpdateProfileHandler(authSvc),
		ChangePassword:  handlers.NewChangePasswordHandler(authSvc),
		RecordReading:   handlers.NewRecordReadingHandler(authSvc, meterSvc),
		LastReading:     handlers.NewLastReadingHandler(authSvc, meterSvc),
		GenerateBill:    handlers.NewGenerateBillHandler(billingSvc),
		ListBills:       handlers.NewListBillsHandler(billingSvc),
		Pay:             handlers.NewPayHandler(paymentSvc),
		TaxReport:       handlers.NewTaxReportHandler(taxSvc),
		ExportTaxReport: handlers.NewExportTaxReportHandler(taxSvc),
		Notifications:   handlers.NewNotificationsHandler(tokenSvc, sessions, hub, logger),
		Health:          handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, auth)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:    server,
		scheduler: monthly,
		hub:       hub,
		reminder:  reminder,
		db:        sqlDB,
		redis:     redisClient,
		publisher: kafkaPublisher,
		logger:    logger,
	}, nil
}

// Run starts the background loops and serves HTTP until context
// cancellation.
func (a *App) Run(ctx context.Context) error {
	go a.scheduler.Run(ctx)
	go a.hub.Run(ctx)
	go a.reminder.Run(ctx)

	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close kafka publisher", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
