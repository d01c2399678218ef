package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/events"
	"github.com/rcliao/corelab/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local database over HTTP",
		Args:  cobra.NoArgs,
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: $CORELAB_ADDR or 127.0.0.1:7777)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger := newLogger(cfg, cfg.Log.File)
	defer logger.Sync()

	s := requireLocal(cfg, "serve")
	defer s.Close()

	bus := events.NewBus(cfg.Server.EventLogSize)
	bus.SubscribeAll(func(e events.Event) {
		logger.Debug("event", zap.String("kind", string(e.Kind)), zap.Any("data", e.Data))
	})
	metrics := server.NewMetrics()
	metrics.Observe(bus)

	srv := server.New(server.Options{
		Backend:     api.NewLocal(s, bus),
		Bus:         bus,
		Logger:      logger,
		Metrics:     metrics,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving", zap.String("db", cfg.DBPath), zap.String("addr", cfg.Server.Addr))
	if err := srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		exitErr("serve", err)
	}
}
