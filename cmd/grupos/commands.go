package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jpedro002/middleware/internal/config"
	"github.com/jpedro002/middleware/internal/etl"
	"github.com/jpedro002/middleware/internal/logging"
)

func newLoadCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Extract, transform and insert the dump into the destination table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, o)
		},
	}
}

func newPreviewCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the record count and the first records without touching the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := resolve(cmd, o)
			if err != nil {
				return err
			}
			if err := checkConfig(cmd.ErrOrStderr(), p); err != nil {
				return err
			}
			return withRun(cmd, p, func(deps etl.Deps) error {
				_, err := etl.Preview(cmd.Context(), p, deps)
				return err
			})
		},
	}
}

func newValidateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := resolve(cmd, o)
			if err != nil {
				return err
			}
			if err := checkConfig(cmd.OutOrStdout(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid (storage=%s table=%s source=%s)\n",
				p.Storage.Kind, p.Storage.DB.Table, p.SourceName())
			return nil
		},
	}
}

func runLoad(cmd *cobra.Command, o *options) error {
	p, err := resolve(cmd, o)
	if err != nil {
		return err
	}
	if err := checkConfig(cmd.ErrOrStderr(), p); err != nil {
		return err
	}
	return withRun(cmd, p, func(deps etl.Deps) error {
		_, err := etl.Run(cmd.Context(), p, deps)
		return err
	})
}

// withRun builds the logger and metrics backend for one run and calls fn.
func withRun(cmd *cobra.Command, p config.Pipeline, fn func(etl.Deps) error) error {
	logger, err := logging.New(logging.Options{Level: p.Log.Level, Development: p.Log.Development})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))

	closeMetrics, err := setupMetrics(p, runID, log)
	if err != nil {
		return err
	}
	defer closeMetrics()

	log.Info("starting",
		zap.String("command", cmd.Name()),
		zap.String("source", p.SourceName()),
		zap.String("storage", p.Storage.Kind),
		zap.String("table", p.Storage.DB.Table),
	)
	return fn(etl.Deps{Out: cmd.OutOrStdout(), Logger: logger, RunID: runID})
}
