package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jpedro002/middleware/internal/config"
)

var errInvalidConfig = errors.New("configuration is invalid")

// options holds the raw flag values. Only flags the user set override the
// loaded configuration.
type options struct {
	configPath string
	envFile    string

	file       string
	dsn        string
	storage    string
	table      string
	batchSize  int
	preview    int
	mode       string
	headerSkip string
	rejects    string
	errorLog   string
	autoCreate bool

	metricsBackend string
	pushgatewayURL string
	datadogAddr    string

	logLevel string
	verbose  bool
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "grupos",
		Short:         "Load grupos_ocorrencia records from a grupodemanda SQL dump",
		Long:          "Reads a SQL dump of INSERT statements, extracts the 9-field grupodemanda tuples, converts them to grupos_ocorrencia records and inserts them in one transaction, skipping ids that already exist.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd, o)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "pipeline config file (.json, .yaml or .yml)")
	f.StringVar(&o.envFile, "env-file", ".env", "dotenv file read before the environment; ignored when missing")
	f.StringVar(&o.file, "file", "", "path of the SQL dump (default "+config.DefaultDumpPath+")")
	f.StringVar(&o.dsn, "dsn", "", "destination database DSN (env "+config.EnvDSN+")")
	f.StringVar(&o.storage, "storage", "", "storage backend: postgres, sqlite, mysql or mssql")
	f.StringVar(&o.table, "table", "", "destination table (default "+config.DefaultTable+")")
	f.IntVar(&o.batchSize, "batch-size", 0, "rows per INSERT round trip (default 100)")
	f.IntVar(&o.preview, "preview", 0, "records shown in the console preview (default 5)")
	f.StringVar(&o.mode, "mode", "", "tuple extraction mode: regex or quoted")
	f.StringVar(&o.headerSkip, "header-skip", "", "header policy: first, per-statement, column-list or none")
	f.StringVar(&o.rejects, "rejects", "", "write dropped tuples as JSON lines to this path")
	f.StringVar(&o.errorLog, "error-log", "", "record constraint failures of the load in this JSON file")
	f.BoolVar(&o.autoCreate, "auto-create", false, "create the destination schema and table when missing")
	f.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, prompush or datadog")
	f.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	f.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug logs with the console encoder")

	root.AddCommand(
		newLoadCmd(o),
		newPreviewCmd(o),
		newValidateCmd(o),
	)
	return root
}

// resolve loads the layered configuration and applies the flags the user
// set.
func resolve(cmd *cobra.Command, o *options) (config.Pipeline, error) {
	p, err := config.Load(config.LoadOptions{ConfigPath: o.configPath, DotEnvPath: o.envFile})
	if err != nil {
		return config.Pipeline{}, err
	}
	applyFlags(cmd.Flags(), o, &p)
	return p, nil
}

func applyFlags(fs *pflag.FlagSet, o *options, p *config.Pipeline) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("file", func() {
		p.Source.Kind = "file"
		p.Source.File.Path = o.file
	})
	set("dsn", func() { p.Storage.DB.DSN = o.dsn })
	set("storage", func() { p.Storage.Kind = o.storage })
	set("table", func() { p.Storage.DB.Table = o.table })
	set("batch-size", func() { p.Runtime.BatchSize = o.batchSize })
	set("preview", func() { p.Runtime.Preview = o.preview })
	set("mode", func() { p.Parser.Mode = o.mode })
	set("header-skip", func() { p.Parser.HeaderSkip = o.headerSkip })
	set("rejects", func() { p.Parser.RejectsPath = o.rejects })
	set("error-log", func() { p.Storage.DB.ErrorLogPath = o.errorLog })
	set("auto-create", func() { p.Storage.DB.AutoCreateTable = o.autoCreate })
	set("metrics-backend", func() { p.Metrics.Backend = o.metricsBackend })
	set("pushgateway-url", func() { p.Metrics.PushgatewayURL = o.pushgatewayURL })
	set("datadog-addr", func() { p.Metrics.DatadogAddr = o.datadogAddr })
	set("log-level", func() { p.Log.Level = o.logLevel })
	if o.verbose {
		p.Log.Level = "debug"
		p.Log.Development = true
	}
}

// checkConfig prints every issue to w and fails on error-severity issues.
func checkConfig(w io.Writer, p config.Pipeline) error {
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errInvalidConfig
	}
	return nil
}
