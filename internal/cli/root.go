// Package cli implements the xfer command line. Every command resolves
// "mount:path" arguments against the configured mounts, marks them as a
// selection and runs one bulk operation on a session.Runner worker.
package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/xfer/config"
	"github.com/jmgilman/go/xfer/logging"
	"github.com/jmgilman/go/xfer/metrics"
	"github.com/jmgilman/go/xfer/session"
	"github.com/jmgilman/go/xfer/transfer"
)

// app is the state shared by all commands of one invocation.
type app struct {
	configPath  string
	logLevel    string
	metricsAddr string

	cfg      *config.Config
	logger   *logging.Logger
	registry *config.Registry
	engine   *transfer.Engine
	runner   *session.Runner
	metrics  *http.Server
}

// Execute runs the root command with os.Args.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "xfer",
		Version: version,
		Short:   "Bulk file operations across storage backends",
		Long: `xfer copies, moves, deletes, archives and uploads files across the
mounts named in its configuration file. Paths are written mount:path,
for example sd:/switch/app.nro.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to the YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(
		a.mountsCommand(),
		a.lsCommand(),
		a.pasteCommand("copy"),
		a.pasteCommand("move"),
		a.deleteCommand(),
		a.zipCommand(),
		a.unzipCommand(),
		a.uploadCommand(),
		a.hashCommand(),
	)
	return root
}

// defaultMount is used when the configuration names no mounts.
func defaultMount() (config.MountConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.MountConfig{}, err
	}
	return config.MountConfig{Name: "local", Kind: "native", Dir: wd}, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(ctx, a.configPath)
	} else {
		a.cfg, err = config.Parse(ctx, nil)
	}
	if err != nil {
		for _, issue := range config.Issues(err) {
			cmd.PrintErrln("  " + issue.String())
		}
		return err
	}

	lc, err := a.cfg.LoggerConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if lc.Level, err = logging.ParseLogLevel(a.logLevel); err != nil {
			return err
		}
	}
	lc.Output = cmd.ErrOrStderr()
	a.logger = logging.NewLogger(lc)

	mounts := a.cfg.Mounts
	if len(mounts) == 0 {
		m, err := defaultMount()
		if err != nil {
			return err
		}
		mounts = []config.MountConfig{m}
	}
	if a.registry, err = config.NewRegistry(mounts); err != nil {
		return err
	}

	a.engine = transfer.New(append(a.cfg.EngineOptions(), transfer.WithLogger(a.logger))...)
	a.runner = session.NewRunner(a.logger)

	addr := a.cfg.Metrics.Addr
	if a.metricsAddr != "" {
		addr = a.metricsAddr
	}
	if addr != "" {
		a.serveMetrics(ctx, addr)
	}
	return nil
}

func (a *app) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(ctx, "metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info(ctx, "serving metrics", "addr", addr)
}

func (a *app) teardown(ctx context.Context) error {
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(shutdownCtx)
	}
	if a.registry != nil {
		return a.registry.Close()
	}
	return nil
}

// out returns the command's standard output.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
