package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/jobconnect/jobboard-api/internal/api"
	"github.com/jobconnect/jobboard-api/internal/app"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/clients/cloudinary"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/logger"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/jobconnect/jobboard-api/internal/notifier"
	"github.com/jobconnect/jobboard-api/internal/repositories"
	"github.com/jobconnect/jobboard-api/internal/services"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func newMediaUploader(cfg config.MediaConfig) services.MediaUploader {
	if !cfg.Enabled() {
		log.Warn("Media uploads are not configured, avatar and logo uploads are disabled")
		return nil
	}
	client := cloudinary.NewClient(cfg.CloudName, cfg.UploadPreset)
	client.SetRateLimit(cfg.MaxRequestsPerSecond)
	return client
}

func runNotifier(cfg config.NotifierConfig, profiles *repositories.Profiles, bus EventBus.Bus) *notifier.Telegram {
	if !cfg.Enabled() {
		log.Info("Telegram token is not set, notifications stay in-app only")
		return nil
	}
	tg, err := notifier.NewTelegram(cfg.TelegramToken, profiles, bus)
	if err != nil {
		log.Fatalf("can't create telegram notifier: %v", err)
	}
	go tg.Run()
	return tg
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	dbContext, err := repositories.NewDbContext(cfg.DB)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	repos := app.NewRepositories(dbContext.DB)
	issuer := auth.NewIssuer(cfg.Server.JWTSecret, cfg.Server.AccessTokenTTL)

	svc, err := app.NewServices(dbContext.DB, repos, cfg.Server, issuer, newMediaUploader(cfg.Media), bus)
	if err != nil {
		log.Fatalf("can't create services: %v", err)
	}

	tg := runNotifier(cfg.Notifier, repos.Profiles, bus)

	scheduler, err := services.NewScheduler(ctx, cfg.Scheduler,
		services.NewJobExpirer(repos.Jobs, repos.Tokens),
		services.NewInterviewSweeper(svc.Interviews, cfg.Scheduler.InterviewGrace))
	if err != nil {
		log.Fatalf("can't create scheduler: %v", err)
	}

	router, err := api.NewRouter(cfg.Server, issuer, svc)
	if err != nil {
		log.Fatalf("can't create router: %v", err)
	}

	server := api.NewServer(cfg.Server.Addr(), router)
	go func() {
		if err := server.Run(); err != nil {
			log.Errorf("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}
	scheduler.Stop()
	if tg != nil {
		tg.Stop()
	}
	bus.WaitAsync()
	log.Info("Services stopped.")
}
