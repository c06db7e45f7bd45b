package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"crypto-arbitrage-dashboard/internal/arbitrage"
	"crypto-arbitrage-dashboard/internal/config"
	"crypto-arbitrage-dashboard/internal/exchange"
	"crypto-arbitrage-dashboard/internal/history"
	"crypto-arbitrage-dashboard/internal/notify"
	"crypto-arbitrage-dashboard/internal/platform/logger"
	"crypto-arbitrage-dashboard/internal/server"
)

func gracefulShutdown(fiberServer *server.FiberServer, watcher *arbitrage.Watcher, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// Finish any in-flight polling cycle before taking the server down.
	watcher.Stop()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fiberServer.ShutdownWithContext(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func buildSenders(cfg config.Config, appLogger *zap.Logger) []notify.Sender {
	senders := make([]notify.Sender, 0, 2)

	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.BotToken == "" || cfg.Notify.Telegram.ChatID == "" {
			appLogger.Warn("Telegram alerts enabled but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is unset")
		} else if sender, err := notify.NewTelegramSender(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID); err != nil {
			appLogger.Error("Failed to create telegram sender: " + err.Error())
		} else {
			senders = append(senders, sender)
		}
	}

	if cfg.Notify.Discord.Enabled {
		if cfg.Notify.Discord.WebhookURL == "" {
			appLogger.Warn("Discord alerts enabled but DISCORD_WEBHOOK_URL is unset")
		} else {
			senders = append(senders, notify.NewDiscordSender(cfg.Notify.Discord.WebhookURL))
		}
	}

	return senders
}

func main() {
	appLogger := logger.Get()

	store, err := config.Load(".")
	if err != nil {
		appLogger.Fatal("Failed to load config: " + err.Error())
	}
	store.WatchFile(appLogger)

	cfg := store.Current()

	exchanges := exchange.CreateClients(cfg, appLogger)
	appLogger.Info(fmt.Sprintf("Built %d exchange clients, %d enabled", len(exchanges), len(cfg.EnabledExchanges())))

	notifier := notify.NewFanout(appLogger, buildSenders(cfg, appLogger)...)
	if notifier.Len() == 0 {
		appLogger.Warn("No alert channels configured; alerts will only be logged and recorded in history")
	}

	ledger := history.NewCSVLedger(cfg.HistoryFile)
	board := arbitrage.NewBoard()
	memory := arbitrage.NewAlertMemory()
	hub := server.NewHub(appLogger)

	watcher := arbitrage.NewWatcher(arbitrage.WatcherOptions{
		Settings:  store,
		Exchanges: exchanges,
		Memory:    memory,
		Ledger:    ledger,
		Notifier:  notifier,
		Board:     board,
		Publisher: hub,
		Log:       appLogger,
		CycleLog:  logger.GetCycleLogger(),
	})
	watcher.Start(context.Background())

	fiberServer := server.New(store, board, memory, ledger, hub, appLogger)
	fiberServer.RegisterFiberRoutes()

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go func() {
		err := fiberServer.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
		if err != nil {
			panic(fmt.Sprintf("http server error: %s", err))
		}
	}()

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(fiberServer, watcher, done)

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
}
