package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/backend/internal/account"
	"learnhub/backend/internal/api/handler"
	"learnhub/backend/internal/auth"
	"learnhub/backend/internal/chat"
	"learnhub/backend/internal/chathub"
	"learnhub/backend/internal/config"
	"learnhub/backend/internal/livesession"
	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/mailer"
	"learnhub/backend/internal/notify"
	"learnhub/backend/internal/payment"
	"learnhub/backend/internal/progress"
	"learnhub/backend/internal/queue"
	"learnhub/backend/internal/quiz"
	"learnhub/backend/internal/scheduler"
	"learnhub/backend/internal/storage"
	"learnhub/backend/internal/video"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type runner func(ctx context.Context) error

// setupVideo builds the YouTube lookup. Without an API key the routes answer 502.
func setupVideo(ctx context.Context, cfg *config.Config, logger logging.Logger) *video.Service {
	if cfg.YouTube.APIKey == "" {
		logger.Warn("YOUTUBE_API_KEY is not set, video search is disabled")
		return video.NewService(nil)
	}
	yt, err := video.NewYouTube(ctx, cfg.YouTube)
	if err != nil {
		log.Fatalf("Failed to set up YouTube client: %v", err)
	}
	return video.NewService(yt)
}

// setupStorage connects to PostgreSQL and migrates the schema.
func setupStorage(cfg *config.Config) *storage.Service {
	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return storage.NewStorageService(db)
}

// setupMailer picks SendGrid when a key is configured and logs messages otherwise.
func setupMailer(cfg *config.Config, logger logging.Logger) mailer.Sender {
	if cfg.Mail.SendgridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, emails are only logged")
		return mailer.NewConsole(logger)
	}
	return mailer.NewSendGrid(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
}

// setupRedis wires the cross-instance chat relay and the email queue. Without REDIS_URL
// broadcasts stay in this process and email is sent from a goroutine.
func setupRedis(ctx context.Context, cfg *config.Config, hub *chathub.ManagerService, sender mailer.Sender, logger logging.Logger) (queue.Dispatcher, []runner, func()) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, running single-instance")
		inline := queue.NewInlineDispatcher(sender, logger)
		return inline, nil, inline.Wait
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}
	relay := chathub.NewRedisRelay(hub, rdb, logger)
	hub.SetBroadcaster(relay)

	connOpt, err := queue.ParseRedisURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	dispatcher := queue.NewAsynqDispatcher(connOpt)
	worker := queue.NewWorker(connOpt, cfg.AsynqConcurrency, sender, logger)

	cleanup := func() {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("closing email queue: %v", err)
		}
		if err := rdb.Close(); err != nil {
			logger.Warn("closing redis: %v", err)
		}
	}
	return dispatcher, []runner{relay.Run, worker.Run}, cleanup
}

func main() {
	log.Println("Starting LearnHub backend...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	host, _ := os.Hostname()
	logger := logging.NewRollbar(logging.NewStd(nil), logging.RollbarOptions{
		Token:       cfg.RollbarToken,
		Environment: cfg.Env,
		ServerHost:  host,
		CodeVersion: cfg.BuildVersion,
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	s := setupStorage(cfg)

	// 2. Chat hub, relay and mail queue
	hub := chathub.NewManagerService(s, logger)
	sender := setupMailer(cfg, logger)
	dispatcher, runners, cleanup := setupRedis(ctx, cfg, hub, sender, logger)
	defer cleanup()

	// 3. Services
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	notifier := notify.NewService(s, dispatcher, cfg.Mail.FrontendBaseURL, logger)
	reminders := scheduler.NewReminders(s, notifier, cfg.ReminderLead, logger)
	sched, err := scheduler.New(reminders, logger)
	if err != nil {
		log.Fatalf("Failed to set up scheduler: %v", err)
	}

	h := &handler.Handler{
		Hub:  hub,
		Auth: auth.NewAuthenticator(tokens, s, config.AuthLookupLimit, logger),
		Chat: chat.NewService(s, hub.Publisher(), logger),
		Live: livesession.NewService(s, livesession.NewZoomClient(ctx, cfg.Zoom), notifier, livesession.Options{
			Instructor:       cfg.InstructorWindow,
			Student:          cfg.StudentWindow,
			MaxSessionLength: cfg.MaxSessionLength,
		}, logger),
		Payments: payment.NewService(s, payment.NewMidtrans(cfg.Midtrans.ServerKey, cfg.Midtrans.Production), notifier, config.DefaultCurrency, logger),
		Notify:   notifier,
		Progress: progress.NewService(s),
		Accounts: account.NewService(s, notifier, cfg.Mail.AdminAddress, logger),
		Quizzes:  quiz.NewService(s, logger),
		Videos:   setupVideo(ctx, cfg, logger),
		Log:      logger,
	}

	// 4. HTTP
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, run := range append(runners, sched.Run) {
		g.Go(func() error { return run(ctx) })
	}
	g.Go(func() error {
		logger.Info("listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// chat sockets are hijacked, so Shutdown does not wait for or close them
		if n := hub.CloseAll(); n > 0 {
			logger.Info("closed %d chat connections", n)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped: %v", err)
		return
	}
	logger.Info("server stopped")
}
