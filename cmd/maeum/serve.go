package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/maeum/internal/api"
	"github.com/xaenox/maeum/internal/bot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Run the HTTP API. The Telegram bot runs in the same process when a token is configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Server.Mode != "" {
			gin.SetMode(a.cfg.Server.Mode)
		}

		server := api.NewServer(a.classifier, a.responder, a.store, a.shares,
			api.Options{AllowOrigins: a.cfg.Server.AllowOrigins}, a.logger)

		var telegram *bot.Bot
		if a.cfg.Telegram.Token != "" {
			telegram, err = bot.New(a.cfg.Telegram.Token, a.classifier, a.responder, a.store, a.logger)
			if err != nil {
				return err
			}
		} else {
			a.logger.Info("Telegram token not configured, bot disabled")
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Run(gctx, a.cfg.Server.Addr(), a.cfg.Server.ShutdownTimeout)
		})
		if telegram != nil {
			g.Go(func() error { return telegram.Start(gctx) })
		}

		a.logger.Info("Starting maeum",
			zap.String("addr", a.cfg.Server.Addr()),
			zap.String("reply_mode", string(a.responder.Mode())))
		return g.Wait()
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run only the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx, configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := bot.New(a.cfg.Telegram.Token, a.classifier, a.responder, a.store, a.logger)
		if err != nil {
			return err
		}

		a.logger.Info("Bot is running", zap.String("reply_mode", string(a.responder.Mode())))
		return b.Start(ctx)
	},
}
