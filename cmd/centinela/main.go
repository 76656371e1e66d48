// Centinela — одноразовый аудит операционной БД мастерской.
//
// Один запуск — один проход: проверка посещаемости, задолженностей,
// открытых ODT и складских остатков, с доставкой алертов одному
// получателю в Discord DM. Расписание задаёт внешний планировщик
// (cron/systemd timer); внутри процесса расписания нет.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ruvenss/centinela/internal/config"
	"github.com/ruvenss/centinela/internal/mq"
	"github.com/ruvenss/centinela/internal/repo"
	"github.com/ruvenss/centinela/internal/rules"
	"github.com/ruvenss/centinela/internal/runner"
	"github.com/ruvenss/centinela/internal/session"
	"github.com/ruvenss/centinela/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		monthsAgo int
		force     bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "centinela",
		Short: "One-shot audit of the operational database with Discord alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), monthsAgo, force, dryRun)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntVar(&monthsAgo, "months-ago", 2, "age threshold for open work orders, in months")
	cmd.Flags().BoolVar(&force, "force", false, "run low-frequency checks even outside closing days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render alerts to the log without delivering them")

	return cmd
}

func run(ctx context.Context, monthsAgo int, force, dryRun bool) error {
	logger := telemetry.SetupLogger()
	runID := uuid.New().String()
	logger = telemetry.WithRunID(logger, runID)
	logger.Info("starting centinela audit run")

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	// DB pool; закрытие гарантировано независимо от исхода запуска
	pool, err := repo.NewPool(ctx, cfg.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	defer pool.Close()
	logger.Info("database connected")

	engine := rules.New(rules.Config{
		Attendance: repo.NewAttendanceRepo(pool),
		Debts:      repo.NewDebtRepo(pool),
		WorkOrders: repo.NewWorkOrderRepo(pool),
		Stocks:     repo.NewStockRepo(pool),
		Logger:     logger,
	})

	var sess runner.Session
	if !dryRun {
		transport, err := session.NewDiscordTransport(cfg.BotToken, logger)
		if err != nil {
			logger.Error("failed to create discord transport", "error", err)
			return err
		}
		sess = session.New(session.Config{
			Transport:   transport,
			RecipientID: cfg.RecipientID,
			Logger:      logger,
		})
	}

	// Зеркалирование алертов — опционально: без RabbitMQ запуск
	// продолжается в обычном режиме
	var mirror runner.AlertMirror
	if cfg.AMQPURL != "" {
		conn, err := mq.NewConnection(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, alert mirroring disabled", "error", err)
		} else {
			defer conn.Close()
			if err := mq.SetupTopology(conn); err != nil {
				logger.Warn("failed to setup mq topology", "error", err)
			} else {
				mirror = mq.NewPublisher(conn, logger)
			}
		}
	}

	r := runner.New(runner.Config{
		Engine:         engine,
		Session:        sess,
		Mirror:         mirror,
		RunID:          runID,
		MonitoredUsers: cfg.MonitoredUsers,
		MonthsAgo:      monthsAgo,
		Force:          force,
		DryRun:         dryRun,
		Logger:         logger,
	})

	started := time.Now()
	runErr := r.Run(ctx)

	telemetry.PushMetrics(cfg.PushgatewayURL, "centinela", logger)

	if runErr != nil {
		logger.Error("audit run failed", "error", runErr, "duration", time.Since(started))
		return runErr
	}

	logger.Info("audit run completed", "duration", time.Since(started))
	return nil
}
