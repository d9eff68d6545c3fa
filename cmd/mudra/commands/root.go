package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// Global flags
	configPath   string
	datasetPath  string
	artifactPath string
	logLevel     string
	verbose      bool
	noHistory    bool

	cfg     config.Config
	cfgFile string
	history *store.Store
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Static hand gesture recognition from a camera",
	Long: `mudra - collect hand samples, train a gesture model and recognize
gestures live with spoken feedback.

Data flows one way: collect appends to the dataset file, train turns the
dataset into a model artifact, live loads the artifact.

Run without a command for the interactive menu.

Examples:
  mudra collect --label fist --count 50
  mudra train
  mudra live`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.NewMenu(newApp(), os.Stdin, cmd.OutOrStdout()).Run(cmd.Context())
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context and end the program without an error.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx)
}

// execute runs the root command under ctx. The history store is closed
// however the command ends.
func execute(ctx context.Context) error {
	defer teardown()
	err := rootCmd.ExecuteContext(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.mudra/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "dataset file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&artifactPath, "model", "", "model artifact file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "human-readable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record runs in the history database")
}

// setup loads the configuration, initializes logging and opens the
// history store.
func setup(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	path = config.ExpandHome(path)
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	cfgFile = path

	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	if artifactPath != "" {
		cfg.ArtifactPath = artifactPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	cfg.DatasetPath = config.ExpandHome(cfg.DatasetPath)
	cfg.ArtifactPath = config.ExpandHome(cfg.ArtifactPath)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}

	if noHistory {
		return nil
	}
	dbPath := cfg.HistoryDB
	if dbPath == "" {
		dbPath = filepath.Join(filepath.Dir(path), "history.db")
	}
	s, err := store.New(config.ExpandHome(dbPath))
	if err != nil {
		logger.Log().Warn("history disabled", zap.Error(err))
		return nil
	}
	history = s
	return nil
}

func teardown() {
	if history != nil {
		if err := history.Close(); err != nil {
			logger.Log().Warn("error closing history", zap.Error(err))
		}
		history = nil
	}
	logger.Sync()
}

func newApp() *app.App {
	return app.New(app.Options{Config: cfg, Store: history})
}

// requireHistory returns the open store or an error naming why there is
// none.
func requireHistory() (*store.Store, error) {
	if history == nil {
		return nil, errors.New("history is disabled")
	}
	return history, nil
}
