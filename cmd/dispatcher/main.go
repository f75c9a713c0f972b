package main

import (
	"context"
	"errors"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	analyticshandler "github.com/faithbridge/notify/internal/api/handlers/analytics"
	dispatchhandler "github.com/faithbridge/notify/internal/api/handlers/dispatch"
	engagementhandler "github.com/faithbridge/notify/internal/api/handlers/engagement"
	preferencehandler "github.com/faithbridge/notify/internal/api/handlers/preference"
	subscriptionhandler "github.com/faithbridge/notify/internal/api/handlers/subscription"
	"github.com/faithbridge/notify/internal/analytics"
	"github.com/faithbridge/notify/internal/api/router"
	"github.com/faithbridge/notify/internal/api/server"
	"github.com/faithbridge/notify/internal/config"
	"github.com/faithbridge/notify/internal/dispatch"
	"github.com/faithbridge/notify/internal/rabbitmq/queue"
	deliveryrepo "github.com/faithbridge/notify/internal/repository/delivery"
	preferencerepo "github.com/faithbridge/notify/internal/repository/preference"
	subscriptionrepo "github.com/faithbridge/notify/internal/repository/subscription"
	preferencesvc "github.com/faithbridge/notify/internal/service/preference"
	subscriptionsvc "github.com/faithbridge/notify/internal/service/subscription"
	"github.com/faithbridge/notify/internal/worker"
	"github.com/faithbridge/notify/pkg/webpush"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewTriggerQueue(ch)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to create trigger queue")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	subRepo := subscriptionrepo.NewRepository(db)
	prefRepo := preferencerepo.NewRepository(db)
	logRepo := deliveryrepo.NewRepository(db)

	dbNum, err := strconv.Atoi(cfg.Redis.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to parse redis database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, dbNum)
	if err = rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	loc, err := time.LoadLocation(cfg.Dispatch.Timezone)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Str("timezone", cfg.Dispatch.Timezone).Msg("failed to load timezone")
	}

	pushClient := webpush.NewClient(
		cfg.Push.Subscriber,
		cfg.Push.VAPIDPublicKey,
		cfg.Push.VAPIDPrivateKey,
		cfg.Push.TTL,
	)

	prefService := preferencesvc.NewService(prefRepo, rdb, cfg.Retry)
	subService := subscriptionsvc.NewService(subRepo)
	aggregator := analytics.NewAggregator(logRepo)

	engine := dispatch.NewEngine(subRepo, prefService, logRepo, pushClient, dispatch.Config{
		Workers:          cfg.Dispatch.Workers,
		SendTimeout:      cfg.Dispatch.SendTimeout,
		Location:         loc,
		FallbackLanguage: cfg.Dispatch.FallbackLanguage,
	})

	dispatcher := worker.NewDispatcher(q, engine)
	go dispatcher.Run(ctx, cfg.Retry, cfg.Workers.Count)

	r := router.New(router.Handlers{
		Subscription: subscriptionhandler.NewHandler(subService, val),
		Preference:   preferencehandler.NewHandler(prefService),
		Dispatch:     dispatchhandler.NewHandler(engine, val),
		Engagement:   engagementhandler.NewHandler(logRepo, val),
		Analytics:    analyticshandler.NewHandler(aggregator),
	})
	s := server.New(cfg.Server.HTTPPort, r)

	go func() {
		if err := s.ListenAndServe(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
