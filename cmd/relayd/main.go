// Command relayd serves the ADK chat relay: it validates chat requests,
// streams Gemini responses as NDJSON chunk lines, and bridges Omniverse Kit
// scene tools over WebSocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"github.com/adkchat/relay/config"
	"github.com/adkchat/relay/gemini"
	"github.com/adkchat/relay/kitbridge"
	"github.com/adkchat/relay/server"
	"github.com/adkchat/relay/tools"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "relayd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := gemini.New(ctx, cfg.GoogleAPIKey, gemini.WithModel(cfg.ModelName))
	if err != nil {
		return err
	}

	registry := tools.NewRegistry()
	bridge := kitbridge.NewManager(registry, kitbridge.WithCallTimeout(cfg.KitCallTimeout))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.New(cfg, provider, registry, bridge),
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":  cfg.Addr(),
			"model": cfg.ModelName,
			"tools": cfg.EnableTools,
		}).Info("relayd.listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("relayd.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// setupLogging configures the process logger: JSON lines to the configured
// file, or the CLI handler on stderr.
func setupLogging(cfg *config.Config) (func(), error) {
	log.SetLevel(cfg.Level())
	if cfg.LogFile == "" {
		log.SetHandler(cli.New(os.Stderr))
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetHandler(json.New(f))
	return func() { f.Close() }, nil
}
