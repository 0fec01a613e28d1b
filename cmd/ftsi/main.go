package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ftsi/internal/app"
	"github.com/kailas-cloud/ftsi/internal/config"
	"github.com/kailas-cloud/ftsi/internal/db/bleve"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	logpkg "github.com/kailas-cloud/ftsi/internal/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every subcommand loads config/<env>.yaml.
func newRootCmd(out io.Writer) *cobra.Command {
	var env string

	root := &cobra.Command{
		Use:   "ftsi",
		Short: "ftsi - schema-driven full-text indexing",
		Long: `ftsi indexes records of registered entity types into embedded full-text
catalogs and serves term and keyword searches over them.

Configuration is read from config/<env>.yaml; ${VAR:-default} is expanded.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "configuration environment (local, dev, prod)")

	root.AddCommand(
		newServeCmd(&env),
		newStatusCmd(&env),
		newTotalsCmd(&env),
		newClearCmd(&env),
		newVersionCmd(),
	)
	return root
}

// runtime is everything a command needs, built from one config file.
type runtime struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  *bleve.Store
	app    *app.App
}

func bootstrap(env string) (*runtime, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	reg := entity.NewRegistry()
	if err := cfg.Register(reg); err != nil {
		return nil, fmt.Errorf("register entities: %w", err)
	}

	store, err := bleve.NewStore(cfg.StorageMode(), logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := app.New(store, reg, app.Options{
		Highlight:   cfg.HighlightMode(),
		MaxPageSize: cfg.Search.MaxPageSize,
		Analyzer:    cfg.Storage.Analyzer,
	})
	if err := a.Verify(context.Background()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("verify catalogs: %w", err)
	}

	return &runtime{
		env:    env,
		cfg:    cfg,
		logger: logger,
		store:  store,
		app:    a,
	}, nil
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Error("Error closing storage", zap.Error(err))
	}
	_ = rt.logger.Sync()
}
