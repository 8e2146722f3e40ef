package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/amiyamandal-dev/feedbridge/internal/api"
	"github.com/amiyamandal-dev/feedbridge/internal/api/handlers"
	"github.com/amiyamandal-dev/feedbridge/internal/config"
	"github.com/amiyamandal-dev/feedbridge/internal/discord"
	"github.com/amiyamandal-dev/feedbridge/internal/feedbin"
	"github.com/amiyamandal-dev/feedbridge/internal/service"
	"github.com/amiyamandal-dev/feedbridge/internal/store"
	"github.com/amiyamandal-dev/feedbridge/internal/validator"
	"github.com/amiyamandal-dev/feedbridge/pkg/logger"
)

const dispatchQueue = 16

func serve(parent context.Context, envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting feedbridge",
		"version", version,
		"guild_id", cfg.Discord.GuildID,
		"poll_interval", cfg.Poll.Interval.String(),
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedbinClient := feedbin.NewClient(feedbin.Options{
		BaseURL:  cfg.Feedbin.BaseURL,
		Username: cfg.Feedbin.Username,
		Password: cfg.Feedbin.Password,
		Timeout:  cfg.Feedbin.Timeout,
		PerPage:  cfg.Feedbin.PerPage,
	}, log)

	mapping := store.NewMapping()
	dispatcher := service.NewDispatcher(dispatchQueue, log)

	session, err := discord.Open(ctx, cfg.Discord.BotToken, log)
	if err != nil {
		return err
	}
	defer session.Close()

	guild := discord.NewGuild(session, cfg.Discord.GuildID)
	provision := service.NewChannelProvisioner(guild, cfg.Discord.Category, log)
	subscriptions := service.NewSubscriptionService(feedbinClient, guild, provision, mapping, validator.New(), log)
	reconciler := service.NewReconciler(feedbinClient, provision, mapping, log)
	poller := service.NewPoller(feedbinClient, guild, provision, mapping, dispatcher, cfg.Poll.Interval, log)

	healthHandler := handlers.NewHealthHandler(mapping, log)

	var server *http.Server
	if cfg.Server.Enabled {
		feedHandler := handlers.NewFeedHandler(mapping, subscriptions, poller, log)
		router := api.NewRouter(healthHandler, feedHandler, cfg.Server, log)

		server = &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: router.Setup(),
		}

		go func() {
			log.Info("HTTP server starting", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("HTTP server failed", "error", err)
				stop()
			}
		}()
	}

	commands := discord.NewCommands(subscriptions, dispatcher, cfg.Discord.ClientID, cfg.Discord.GuildID, log)
	removeHandler, err := commands.Register(ctx, session)
	if err != nil {
		log.Error("Error registering commands", "error", err)
	} else {
		defer removeHandler()
	}

	feedbinClient.LoadIcons(ctx)

	if _, err := reconciler.Reconcile(ctx); err != nil {
		log.Error("Feed mapping sync failed, continuing with an empty mapping", "error", err)
	}
	healthHandler.SetReady(true)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		poller.Start(ctx)
	}()

	log.Info("Bridge started")

	<-ctx.Done()
	log.Info("Shutting down...")
	healthHandler.SetReady(false)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", "error", err)
		}
	}

	wg.Wait()
	log.Info("Bridge stopped gracefully")
	return nil
}
