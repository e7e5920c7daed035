package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gocorda/adapters/gonumlp"
	"gocorda/adapters/sqlstore"
	"gocorda/app"
	"gocorda/internal"
	"gocorda/internal/config"
	"gocorda/internal/corda"
	"gocorda/ports"
)

// env is the process-wide state shared by all subcommands
type env struct {
	cfg    *config.Config
	logger *internal.Logger
	dbURL  string
	db     *sqlx.DB
}

func main() {
	e := &env{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "corda",
		Short:         "Context-specific metabolic network reconstruction",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			e.logger = internal.NewLogger(internal.ParseLogLevel(logLevel))
			if e.dbURL == "" {
				e.dbURL = cfg.Database.URL
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.db != nil {
				e.db.Close()
			}
			if e.logger != nil {
				e.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug or trace (default LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&e.dbURL, "db", "", "Run store DSN, a postgres URL or a sqlite file (default DATABASE_URL)")

	rootCmd.AddCommand(
		newBuildCmd(e),
		newAssociatedCmd(e),
		newConfidenceCmd(e),
		newBenchmarkCmd(e),
		newRunsCmd(e),
		newServeCmd(e),
		newMigrateCmd(e),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// options returns the configured engine defaults overlaid with a parameter file
func (e *env) options(paramsPath string) (corda.Options, error) {
	opts := e.cfg.Engine.Options()
	opts.Logger = e.logger
	if paramsPath == "" {
		return opts, nil
	}
	params, err := config.LoadParams(paramsPath)
	if err != nil {
		return opts, err
	}
	if err := params.Apply(&opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// runs opens the run store, or returns nil when none is configured
func (e *env) runs(ctx context.Context) (ports.RunRepository, error) {
	if e.dbURL == "" {
		return nil, nil
	}
	if e.db == nil {
		db, err := sqlstore.Open(ctx, e.dbURL)
		if err != nil {
			return nil, err
		}
		e.db = db
		e.logger.Debug("run store opened", zap.String("driver", sqlstore.DriverFor(e.dbURL)))
	}
	return sqlstore.NewRunRepository(e.db), nil
}

func (e *env) service(ctx context.Context) (*app.ReconstructionService, error) {
	runs, err := e.runs(ctx)
	if err != nil {
		return nil, err
	}
	return app.NewReconstructionService(gonumlp.New(), runs, e.logger), nil
}
