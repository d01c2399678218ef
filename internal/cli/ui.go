package cli

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/apps/memory"
	"github.com/rcliao/corelab/internal/config"
	"github.com/rcliao/corelab/internal/events"
	"github.com/rcliao/corelab/internal/shell"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the CoreLab terminal UI",
		Args:  cobra.NoArgs,
		Run:   runUI,
	}

	RootCmd.AddCommand(cmd)
}

func runUI(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = filepath.Join(config.Dir(), "corelab.log")
	}
	logger := newLogger(cfg, logFile)
	defer logger.Sync()

	bus := events.NewBus(0)
	bus.SubscribeAll(func(e events.Event) {
		logger.Debug("event", zap.String("kind", string(e.Kind)), zap.Any("data", e.Data))
	})
	sess, err := openSession(cfg, bus)
	if err != nil {
		exitErr("open store", err)
	}
	defer sess.Close()

	ctx := cmd.Context()
	registry := shell.NewRegistry()
	if err := registry.Register(memory.New(ctx, sess.backend, logger)); err != nil {
		exitErr("register app", err)
	}

	logger.Info("ui started",
		zap.String("db", cfg.DBPath),
		zap.String("server", cfg.Client.ServerURL))

	p := tea.NewProgram(shell.New(registry, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		exitErr("run ui", err)
	}
}
