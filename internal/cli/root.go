// Package cli implements the corelab commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/corelab/internal/api"
	"github.com/rcliao/corelab/internal/config"
	"github.com/rcliao/corelab/internal/events"
	"github.com/rcliao/corelab/internal/logging"
	"github.com/rcliao/corelab/internal/model"
	"github.com/rcliao/corelab/internal/store"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	serverURL  string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "corelab",
	Short: "A small personal lab of terminal apps",
	Long:  "CoreLab hosts small personal apps. Memory tracks people, conversation notes and the things worth remembering about them.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CORELAB_CONFIG or ~/.corelab/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CORELAB_DB or ~/.corelab/corelab.db)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().String("server", "", "Use the CoreLab server at this URL instead of the local database")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig resolves the configuration and applies persistent flags on top.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}

	logLevel, _ = cmd.Flags().GetString("log-level")
	serverURL, _ = cmd.Flags().GetString("server")
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func newLogger(cfg *config.Config, file string) *zap.Logger {
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: file})
	if err != nil {
		exitErr("init logger", err)
	}
	return logger
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(cfg.DBPath)
}

// session is the backend a command talks to. local is nil when a remote
// server is configured.
type session struct {
	backend api.Backend
	local   *store.SQLiteStore
}

func (s *session) Close() {
	if s.local != nil {
		s.local.Close()
	}
}

// openSession returns the HTTP client when a server URL is configured and an
// in-process backend over the local database otherwise.
func openSession(cfg *config.Config, bus *events.Bus) (*session, error) {
	if cfg.Client.ServerURL != "" {
		return &session{backend: api.NewClient(cfg.Client.ServerURL, cfg.Client.RequestTimeout)}, nil
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &session{backend: api.NewLocal(s, bus), local: s}, nil
}

// requireLocal opens the local database, refusing when a server is
// configured.
func requireLocal(cfg *config.Config, op string) *store.SQLiteStore {
	if cfg.Client.ServerURL != "" {
		exitErr(op, fmt.Errorf("not available with --server; run it where the database lives"))
	}
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

// findPerson looks a person up by id, including inactive ones when the
// database is local.
func findPerson(ctx context.Context, sess *session, id int64) (model.Person, error) {
	if sess.local != nil {
		p, err := sess.local.GetPerson(ctx, id)
		if err != nil {
			return model.Person{}, err
		}
		return *p, nil
	}
	persons, err := sess.backend.GetPersons(ctx)
	if err != nil {
		return model.Person{}, err
	}
	for _, p := range persons {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Person{}, fmt.Errorf("person %d: %w", id, store.ErrNotFound)
}

func printJSON(v interface{}) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
