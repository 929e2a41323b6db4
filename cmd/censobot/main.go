package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/censo/censobot/internal/bot"
	"github.com/censo/censobot/internal/config"
	"github.com/censo/censobot/internal/domain/identity"
	"github.com/censo/censobot/internal/domain/patient"
	"github.com/censo/censobot/internal/domain/search"
	"github.com/censo/censobot/internal/platform/audit"
	"github.com/censo/censobot/internal/platform/auth"
	"github.com/censo/censobot/internal/platform/db"
	"github.com/censo/censobot/internal/platform/ops"
	"github.com/censo/censobot/internal/platform/session"
	"github.com/censo/censobot/internal/platform/transport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "censobot",
		Short: "Ward-census patient lookup bot for Matrix",
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	auditLogger := audit.NewLogger(cfg.AuditDir, logger)
	defer auditLogger.Close()

	client, err := transport.NewClient(cfg.HomeserverURL, cfg.BotUserID, cfg.BotAccessToken, logger)
	if err != nil {
		return fmt.Errorf("create transport: %w", err)
	}

	admissions := patient.NewAdmissionRepoPG(pool)
	bindings := identity.NewBindingRepoPG(pool)
	gate := auth.NewGatePG(pool)
	engine := search.NewEngine(admissions, gate)
	store := session.NewStore()

	orch := bot.NewOrchestrator(client, auditLogger, bindings, engine, gate, admissions,
		store, cfg.SearchTimeout, logger)
	orch.Start(ctx)
	client.OnMessage(orch.HandleMessage)

	opsSrv := ops.NewServer(cfg.OpsPort, pool, client, logger)
	go func() {
		if err := opsSrv.Start(); err != nil {
			logger.Error().Err(err).Msg("ops server stopped")
		}
	}()

	logger.Info().
		Str("homeserver", cfg.HomeserverURL).
		Str("bot_user", cfg.BotUserID).
		Str("ops_port", cfg.OpsPort).
		Msg("censobot starting")

	err = client.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sErr := opsSrv.Shutdown(shutdownCtx); sErr != nil {
		logger.Error().Err(sErr).Msg("ops shutdown failed")
	}
	orch.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("transport: %w", err)
	}
	logger.Info().Msg("censobot stopped")
	return nil
}
