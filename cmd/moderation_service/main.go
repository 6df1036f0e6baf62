package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_moderation_service/internal/moderation/api"
	"video_moderation_service/internal/moderation/app"
	"video_moderation_service/internal/moderation/classifier"
	"video_moderation_service/internal/moderation/event"
	"video_moderation_service/internal/moderation/repository"
	"video_moderation_service/internal/moderation/storage"
	"video_moderation_service/pkg/config"
	"video_moderation_service/pkg/database"
	"video_moderation_service/pkg/logger"
	testtool "video_moderation_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.Moderation, config.EnvConfig.ModerationLogPath)
	defer logger.Log.Sync()

	// 設定錯誤在連線任何服務前就失敗
	cfg, err := config.LoadModeration(config.EnvConfig.Moderation, config.EnvConfig.ModerationYAMLPath)
	if err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Log.SetDebugMode(cfg.Debug)
	testtool.StartPprof()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. 連線 PostgreSQL (gorm for videos, pgxpool for notifications)
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	pgConn := database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	}
	db, err := database.NewPGConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
			zap.String("host", cfg.PostgreSQL.Host), zap.Error(err))
	}
	videoRepo := repository.NewVideoRepo(db)
	if err := videoRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("videos table migration failed", zap.Error(err))
	}

	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to open notification pool", zap.Error(err))
	}
	defer pool.Close()
	notificationRepo := repository.NewNotificationRepo(pool)
	if err := notificationRepo.EnsureSchema(ctx); err != nil {
		logger.Log.Fatal("notifications schema failed", zap.Error(err))
	}

	// 2. 影片來源
	store, err := newStore(cfg)
	if err != nil {
		logger.Log.Fatal("Unable to init video storage", zap.String("provider", cfg.Storage.Provider), zap.Error(err))
	}

	// 3. 圖片分類服務
	rekognition, err := classifier.NewRekognitionFromConfig(ctx, cfg.Classifier)
	if err != nil {
		logger.Log.Fatal("Unable to init classifier", zap.Error(err))
	}

	// 4. Redis 鎖
	redisConn := database.RedisConnection{Addr: cfg.Redis.Addr, DB: cfg.Redis.RedisDB}
	if redisConn.Addr == "" {
		redisConn.MasterName, redisConn.SentinelAddrs = config.GetRedisSetting()
	}
	redisClient, err := database.NewRedisClient(redisConn)
	if err != nil {
		logger.Log.Fatal("Unable to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 5. 事件與稽核 (optional)
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.Kafka.Enabled {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			logger.Log.Fatal("Kafka Writer 建立失敗", zap.Error(err))
		}
		kp := event.NewKafkaPublisher(writer)
		defer kp.Close()
		publisher = kp
	}

	var audit event.AuditStore = event.NopAuditStore{}
	if cfg.Mongo.Enabled {
		mdb, err := database.NewMongoDB(ctx, database.Connection{
			ConnectStr:    cfg.Mongo.URI,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		}, cfg.Mongo.Database)
		if err != nil {
			logger.Log.Fatal("Unable to connect to mongo", zap.Error(err))
		}
		defer mdb.Close(context.Background())
		audit = event.NewMongoAuditStore(mdb.Client, cfg.Mongo.Database, cfg.Mongo.Collection)
	}

	pipeline := app.NewPipeline(app.Deps{
		Store:      store,
		Extractor:  app.NewFFmpegExtractor(cfg.Pipeline.FFmpegBinary),
		Classifier: app.NewDispatcher(rekognition, cfg.Classifier.MinConfidence, cfg.Pipeline.Denylist),
		Disposer:   app.NewDisposer(videoRepo, notificationRepo, store),
		Videos:     videoRepo,
		Locker:     database.NewRedisLocker(redisClient, "moderation:lock:"),
		Publisher:  publisher,
		Audit:      audit,
	}, app.OptionsFromConfig(cfg))

	// 6. RabbitMQ consumer
	rabbitURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port)
	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    rabbitURL,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("RabbitMQ 連線失敗", zap.Error(err))
	}
	defer conn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(conn, cfg.RabbitMQ.RetryCount, time.Duration(cfg.RabbitMQ.RetryInterval))
	if err != nil {
		logger.Log.Fatal("取得 RabbitMQ Channel 失敗", zap.Error(err))
	}
	defer rabbitChannel.Close()

	if err := database.DeclareDurableQueue(rabbitChannel, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Prefetch); err != nil {
		logger.Log.Fatal("Queue Declare failed", zap.Error(err))
	}

	consumer := app.NewConsumer(rabbitChannel, pipeline, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Prefetch)
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.StartConsumer(ctx); err != nil {
			logger.Log.Error("consumer stopped", zap.Error(err))
			cancel()
		}
	}()

	// 7. gRPC health
	grpcServer, health, err := database.StartHealthServer(cfg.IP+":"+cfg.GRPCPort, config.EnvConfig.Moderation)
	if err != nil {
		logger.Log.Fatal("Failed to start gRPC health server", zap.Error(err))
	}

	// 8. HTTP API
	r := fiber.New(fiber.Config{DisableStartupMessage: true})
	r.Use(fiber_log.New())
	api.RegisterRoutes(r, api.NewModerationHandler(pipeline, database.NewRabbitRepository(rabbitChannel), videoRepo, cfg.RabbitMQ.Queue))
	go func() {
		logger.Log.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := r.Listen(cfg.IP + ":" + cfg.HTTPPort); err != nil {
			logger.Log.Error("HTTP server stopped", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down moderation service")
	health.SetServingStatus(config.EnvConfig.Moderation, healthpb.HealthCheckResponse_NOT_SERVING)
	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Log.Warn("HTTP shutdown", zap.Error(err))
	}
	<-consumerDone
	grpcServer.GracefulStop()
}

func newStore(cfg config.Moderation) (storage.Store, error) {
	switch cfg.Storage.Provider {
	case config.StorageProviderMinIO:
		m := cfg.Storage.MinIO
		mc, err := database.NewMinIOConnection(database.MinIOConnection{
			Endpoint:      fmt.Sprintf("%s:%d", m.Host, m.Port),
			User:          m.User,
			Password:      m.Password,
			BucketName:    m.BucketName,
			UseSSL:        m.UseSSL,
			RetryCount:    m.RetryCount,
			RetryInterval: time.Duration(m.RetryInterval),
		})
		if err != nil {
			return nil, err
		}
		return storage.NewMinIOStore(mc, m.BucketName), nil
	default:
		return storage.NewStreamClient(storage.StreamConfig{
			BaseURL:   cfg.Storage.APIBaseURL,
			AccountID: cfg.Storage.AccountID,
			AccessKey: cfg.Storage.AccessKey,
			Timeout:   time.Duration(cfg.Storage.Timeout) * time.Second,
			RetryMax:  2,
		}), nil
	}
}
