package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"pcsummary/config"
	"pcsummary/internal/logger"
	"pcsummary/internal/prisma"
	"pcsummary/internal/store"
)

const configName = "pcsummary.yml"

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// options are the flags shared by both modes.
type options struct {
	configPath string
	customer   string
	debug      bool
	timeAmount int
	timeUnit   string
	stdout     io.Writer
	stderr     io.Writer
	cfg        *config.Config
}

func (o *options) timeRange() prisma.TimeRange {
	return prisma.TimeRange{Amount: o.timeAmount, Unit: o.timeUnit}
}

func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		logger.Warnf("config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat(configName); err == nil {
		return configName
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), configName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return configName
}

// setup loads configuration and initializes logging.
func (o *options) setup() error {
	path := findConfigFile(o.configPath)
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("failed to load config %s: %w", path, err)}
	}
	if err := config.LoadEnv(cfg); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("failed to load .env: %w", err)}
	}
	o.cfg = cfg

	logging := cfg.PCSummary.Logging
	level := logging.Level
	if o.debug {
		logging.Enabled = true
		level = "debug"
	}
	if err := logger.Init(logging.Enabled, level, logging.File, logging.Console); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("failed to initialize logger: %w", err)}
	}
	if found {
		logger.Debugf("Config loaded from: %s", path)
	}
	return nil
}

func (o *options) openStore(ctx context.Context) (store.Store, error) {
	st := o.cfg.PCSummary.Storage
	switch st.Mode {
	case "file":
		logger.Debugf("Storage mode: file (%s)", st.File.Dir)
		return store.NewFileStore(st.File.Dir), nil
	case "redis":
		logger.Debugf("Storage mode: redis (%s)", st.Redis.Addr)
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:      st.Redis.Addr,
			Password:  st.Redis.Password,
			DB:        st.Redis.DB,
			KeyPrefix: st.Redis.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", st.Mode)
	}
}

// location describes where a document lives for user-facing messages.
func location(s store.Store, name string) string {
	if fs, ok := s.(*store.FileStore); ok {
		return fs.Path(name)
	}
	return name
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "pcsummary",
		Short:         "Collect or process Prisma Cloud policies and alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.customer, "customer_name", "c", "", "*Required* Customer Name, used for Alert and Policy files")
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default ./"+configName+")")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Enable debugging")
	flags.IntVar(&opts.timeAmount, "time_range_amount", prisma.DefaultTimeRange.Amount, "Time Range Amount to limit the Alert query (1, 2 or 3)")
	flags.StringVar(&opts.timeUnit, "time_range_unit", prisma.DefaultTimeRange.Unit, "Time Range Unit to limit the Alert query (day, week, month, year)")
	_ = root.MarkPersistentFlagRequired("customer_name")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := opts.timeRange().Validate(); err != nil {
			return &exitError{code: 2, err: err}
		}
		return opts.setup()
	}

	root.AddCommand(newCollectCommand(opts), newProcessCommand(opts))
	return root
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger.Console = stderr
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	defer logger.Close()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintln(stderr, root.UsageString())
	return 2
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
