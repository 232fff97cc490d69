package main

import (
	"context"
	"log"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carbonmarket/ledger-backend/internal/api"
	"carbonmarket/ledger-backend/internal/archive"
	"carbonmarket/ledger-backend/internal/audit"
	"carbonmarket/ledger-backend/internal/auth"
	"carbonmarket/ledger-backend/internal/certificates"
	"carbonmarket/ledger-backend/internal/config"
	"carbonmarket/ledger-backend/internal/core"
	"carbonmarket/ledger-backend/internal/events"
	"carbonmarket/ledger-backend/internal/notifications"
	"carbonmarket/ledger-backend/internal/notifications/websocket"
	"carbonmarket/ledger-backend/internal/reports"
	"carbonmarket/ledger-backend/internal/search"
	"carbonmarket/ledger-backend/internal/stats"
	"carbonmarket/ledger-backend/internal/telemetry"
	"carbonmarket/ledger-backend/pkg/clock"
	"carbonmarket/ledger-backend/pkg/payments"
	"carbonmarket/ledger-backend/pkg/storage"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	deployer := uuid.New()
	if cfg.Ledger.DeployerID != "" {
		deployer, err = uuid.Parse(cfg.Ledger.DeployerID)
		if err != nil {
			logger.Fatal("invalid deployer id", zap.Error(err))
		}
	} else {
		logger.Warn("no deployer configured, generated one", zap.String("deployer", deployer.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Archive mirror (PostgreSQL via gorm).
	gdb, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("failed to connect to archive database", zap.Error(err))
	}
	archiveRepo, err := archive.NewRepository(gdb)
	if err != nil {
		logger.Fatal("failed to prepare archive", zap.Error(err))
	}

	// Analytics run raw SQL over the same database.
	sdb, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("failed to connect analytics pool", zap.Error(err))
	}
	defer sdb.Close()

	// Shared AWS clients for telemetry, receipts and alerts.
	awsOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Aws.Region)}
	if cfg.Aws.AccessKeyID != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Aws.AccessKeyID, cfg.Aws.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}
	telemetryStore := telemetry.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.Aws.TelemetryTable)

	s3Client, err := storage.NewS3Client(ctx, cfg.Aws.Region, cfg.Aws.AccessKeyID, cfg.Aws.SecretAccessKey)
	if err != nil {
		logger.Fatal("failed to build S3 client", zap.Error(err))
	}

	// Audit log (MongoDB).
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal("failed to connect to mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())
	auditLog := audit.NewLog(mongoClient, cfg.Mongo.Database, cfg.Mongo.Collection)

	// Listing search (Elasticsearch).
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Elastic.Addresses})
	if err != nil {
		logger.Fatal("failed to build elasticsearch client", zap.Error(err))
	}

	// Ledger engine. The dispatcher is its recorder; sinks are registered
	// below once they have an engine to query.
	dispatcher := events.NewDispatcher(logger)
	gateway := payments.NewRecordingGateway(true)
	engine := core.NewEngine(deployer, clock.NewSystemSource(), gateway,
		core.WithVerificationThreshold(cfg.Ledger.VerificationThreshold),
		core.WithRecorder(dispatcher),
	)

	// Accounts and sessions.
	authService, err := auth.NewService(gdb, []byte(cfg.Security.JWTSecret))
	if err != nil {
		logger.Fatal("failed to prepare auth", zap.Error(err))
	}

	// Downstream collaborators.
	searchIndex := search.NewIndex(esClient, cfg.Elastic.Index, engine)
	hub := websocket.NewHub()
	defer hub.Close()

	var email *notifications.EmailChannel
	if cfg.Aws.ReceiptSender != "" {
		email = notifications.NewEmailChannel(sesv2.NewFromConfig(awsCfg), cfg.Aws.ReceiptSender)
	}
	var alerts *notifications.AlertPublisher
	if cfg.Aws.AlertTopicARN != "" {
		alerts = notifications.NewAlertPublisher(sns.NewFromConfig(awsCfg), cfg.Aws.AlertTopicARN)
	}

	certSvc := certificates.NewService(engine, archiveRepo, s3Client, cfg.Aws.CertificateBucket)

	dispatcher.Register(
		archive.NewSink(archiveRepo, engine),
		telemetry.NewSink(telemetryStore, engine),
		auditLog,
		searchIndex,
		certSvc,
		notifications.NewSink(engine, hub, email, alerts, authService),
	)
	dispatcher.Start()
	defer dispatcher.Close()

	reportSvc := reports.NewService(engine, archiveRepo)
	statsSvc := stats.NewService(engine, stats.NewPostgresRepository(sdb))

	router := api.NewRouter(logger, authService, api.Handlers{
		Auth:     auth.NewHandler(authService),
		Projects: api.NewProjectHandler(engine, archiveRepo, telemetryStore),
		Credits:  api.NewCreditHandler(engine, archiveRepo, reportSvc, certSvc),
		Market:   api.NewMarketHandler(engine, archiveRepo, searchIndex, hub),
		Admin:    api.NewAdminHandler(engine, auditLog),
		Stats:    api.NewStatsHandler(statsSvc),
	})

	addr := cfg.Server.GetServerAddr()
	logger.Info("server listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
