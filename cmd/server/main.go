package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dbhayani01/sahumario-app/internal/audit"
	"github.com/dbhayani01/sahumario-app/internal/cart"
	"github.com/dbhayani01/sahumario-app/internal/checkout"
	"github.com/dbhayani01/sahumario-app/internal/config"
	"github.com/dbhayani01/sahumario-app/internal/gateway"
	httpapi "github.com/dbhayani01/sahumario-app/internal/http"
	"github.com/dbhayani01/sahumario-app/internal/ledger"
	"github.com/dbhayani01/sahumario-app/internal/verify"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.Info("storefront starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	// Remote mirrors are optional; the service stays up on the local stores
	// alone if they are not configured.
	var cartMirror cart.Store
	if cfg.MongoURI != "" {
		mongoClient, errMongo := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if errMongo != nil {
			log.Fatalf("failed to connect to mongodb: %v", errMongo)
		}
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
		cartMirror = cart.NewMongoMirror(mongoClient.Database(cfg.MongoDatabase).Collection("carts"))
	}

	var auditWriter *kafka.Writer
	if len(cfg.KafkaBrokers) > 0 {
		auditWriter = audit.NewKafkaWriter(cfg.AuditTopic, cfg.KafkaBrokers...)
		defer auditWriter.Close()
	}
	auditLog := audit.NewLogger(log, auditWriter)

	var orderMirror ledger.Mirror
	if cfg.PostgresHost != "" {
		creds := &ledger.Credentials{
			Host:              cfg.PostgresHost,
			Port:              cfg.PostgresPort,
			User:              cfg.PostgresUser,
			Password:          cfg.PostgresPassword,
			DBName:            cfg.PostgresDBName,
			MigrationsDirPath: cfg.MigrationsPath,
		}
		repo, errPg := ledger.NewPostgresRepository(creds)
		if errPg != nil {
			log.Fatalf("failed to connect to postgres: %v", errPg)
		}
		defer repo.Close()

		if errMig := repo.RunMigrations(creds); errMig != nil {
			log.Fatalf("failed to run migrations: %v", errMig)
		}
		orderMirror = repo
	}

	carts := cart.NewService(cart.NewRedisStore(redisClient), cartMirror)
	orders := ledger.NewService(ledger.NewRedisStore(redisClient), orderMirror, auditLog)

	reserver := gateway.NewReservationClient(cfg.GatewayBaseURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout)
	adapter := gateway.NewAdapter(gateway.NewScriptLoader(cfg.CheckoutScriptURL))
	verifier := verify.NewVerifier(cfg.RazorpayKeySecret)

	manager := checkout.NewManager(func() *checkout.Orchestrator {
		return checkout.NewOrchestrator(carts, reserver, adapter, verifier, orders, auditLog)
	})

	router := httpapi.NewRouter(
		httpapi.NewCartHandler(carts, cfg.RequestTimeout),
		httpapi.NewPaymentsHandler(reserver, verifier, auditLog, cfg.RequestTimeout),
		httpapi.NewCheckoutHandler(manager, adapter, reserver, cfg.RequestTimeout),
		httpapi.NewOrdersHandler(orders, cfg.RequestTimeout),
		cfg.RequestTimeout,
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Infof("HTTP server listening on %s", httpServer.Addr)
		if errSrv := httpServer.ListenAndServe(); errSrv != nil && errSrv != http.ErrServerClosed {
			log.Fatalf("server error: %v", errSrv)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
