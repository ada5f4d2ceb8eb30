package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/modwarden/modwarden/internal/bot"
	"github.com/modwarden/modwarden/internal/config"
	"github.com/modwarden/modwarden/internal/db/sqlite"
	"github.com/modwarden/modwarden/internal/flood"
	"github.com/modwarden/modwarden/internal/infra"
	"github.com/modwarden/modwarden/internal/lifecycle"
	"github.com/modwarden/modwarden/internal/moderation"
	"github.com/modwarden/modwarden/internal/observability"
	"github.com/modwarden/modwarden/internal/registry"
)

const (
	dbFilename    = "modwarden.db"
	sweepInterval = time.Hour
	maxRecoveries = 3
)

func main() {
	cfg := config.Get()
	log.SetFormatter(&config.MwFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.Level(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infra.GoRecoverable(maxRecoveries, "bot", func() {
		if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Errorln("bot stopped")
			cancel()
		}
	})

	<-ctx.Done()
	log.Infoln("shutting down")
}

func run(ctx context.Context, cfg config.Config) error {
	botAPI, err := api.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return errors.WithMessage(err, "cant initialize bot api")
	}
	if log.Level(cfg.LogLevel) == log.TraceLevel {
		botAPI.Debug = true
	}
	defer botAPI.StopReceivingUpdates()
	log.WithField("username", botAPI.Self.UserName).Infoln("authorized")

	dbClient, err := sqlite.NewSQLiteClient(ctx, infra.GetWorkDir(), dbFilename)
	if err != nil {
		return errors.WithMessage(err, "cant initialize storage")
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.WithError(err).Errorln("cant close storage")
		}
	}()

	service := bot.NewService(botAPI, dbClient, cfg)
	roles := registry.New(cfg.AdminIDs)
	tracker := flood.NewTracker(cfg.Flood.Window, cfg.Flood.Limit)
	engine := moderation.NewEngine(
		dbClient,
		roles,
		tracker,
		bot.NewTelegramEnforcer(botAPI),
		bot.NewAdminNotifier(botAPI, cfg.AdminIDs),
		cfg,
	)
	updateProcessor := bot.NewUpdateProcessor(service, engine)

	runtime := lifecycle.NewRuntime()
	runtime.Register("metrics", observability.NewServer(cfg.MetricsAddr))
	runtime.Register("sweeper", moderation.NewSweeper(dbClient, tracker, sweepInterval))
	if err := runtime.Start(ctx); err != nil {
		return errors.WithMessage(err, "cant start runtime")
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := runtime.Stop(stopCtx); err != nil {
			log.WithError(err).Errorln("cant stop runtime cleanly")
		}
	}()

	updateConfig := api.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan, errorChan := bot.GetUpdatesChans(ctx, botAPI, updateConfig)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case err := <-errorChan:
				return errors.WithMessage(err, "bot api get updates error")
			case update := <-updateChan:
				if err := updateProcessor.Process(gCtx, &update); err != nil {
					log.WithError(err).Errorln("cant process update")
				}
			}
		}
	})
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-infra.MonitorExecutable(gCtx):
			return errors.New("executable file was modified")
		}
	})
	return g.Wait()
}
