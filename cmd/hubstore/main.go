package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	fsAdapter "github.com/bft-labs/hubstore/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/hubstore/internal/adapters/http"
	logAdapter "github.com/bft-labs/hubstore/internal/adapters/log"
	"github.com/bft-labs/hubstore/internal/app"
	"github.com/bft-labs/hubstore/internal/cliconfig"
	"github.com/bft-labs/hubstore/internal/domain"
)

const longHelp = `Forward processed agent data from the hub to the Store API.

Batches are posted to {base-url}/processed_agent_data/ as JSON. A batch file
holds either a JSON object (sent as-is) or a JSON array of records. Only a
200 OK answer counts as delivered; every batch gets exactly one attempt.

Configuration is read from $HOME/.hubstore/config.toml (or --config, TOML or
YAML), then HUBSTORE_* environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  hubstore submit batch.json --base-url http://store:8000
  cat batch.json | hubstore submit -
  hubstore enqueue batch.json --spool-dir /var/spool/hubstore
  hubstore watch --spool-dir /var/spool/hubstore
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := cliconfig.Logger()
		log.Error().Err(err).Msg("hubstore")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "hubstore",
		Short:         "Forward processed agent data to the Store API",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, &cfg, cfgPath)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.hubstore/config.toml)")
	root.PersistentFlags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Store API base URL")
	root.PersistentFlags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP request timeout (0 disables)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.SpoolDir, "spool-dir", cfg.SpoolDir, "directory holding batches waiting to be submitted")

	root.AddCommand(newSubmitCmd(&cfg), newEnqueueCmd(&cfg), newWatchCmd(&cfg))
	return root
}

// loadConfig merges file, environment and flag values. Flags win, then env, then file.
func loadConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgPath != "" && !cliconfig.FileExists(cfgPath) {
		return fmt.Errorf("config file %s not found", cfgPath)
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	cliconfig.SetLevel(level)

	log := cliconfig.Logger()
	log.Debug().Interface("config", cfg).Msg("configuration")
	return nil
}

func newGateway(cfg *cliconfig.Config) *httpAdapter.StoreAPIAdapter {
	logger := logAdapter.NewZerologAdapterWithLogger(cliconfig.Logger())
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	return httpAdapter.NewStoreAPIAdapter(cfg.BaseURL, client, logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(arg)
}

func newSubmitCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [FILE|-]",
		Short: "Submit one batch file to the Store API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			data, err := readInput(cmd, src)
			if err != nil {
				return fmt.Errorf("read batch: %w", err)
			}
			batch, err := domain.DecodeBatch(data)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			gw := newGateway(cfg)
			if !gw.SaveData(ctx, batch) {
				return fmt.Errorf("batch was not accepted by %s", gw.URL())
			}

			log := cliconfig.Logger()
			log.Info().Str("url", gw.URL()).Msg("batch saved")
			return nil
		},
	}
}

func newEnqueueCmd(cfg *cliconfig.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue [FILE|-]",
		Short: "Validate a batch file and place it in the spool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SpoolDir == "" {
				return fmt.Errorf("%w: spool-dir is required", domain.ErrInvalidConfig)
			}
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			data, err := readInput(cmd, src)
			if err != nil {
				return fmt.Errorf("read batch: %w", err)
			}

			name, err := fsAdapter.NewSpool(cfg.SpoolDir).Enqueue(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("enqueue: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newWatchCmd(cfg *cliconfig.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Submit spooled batches as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SpoolDir == "" {
				return fmt.Errorf("%w: spool-dir is required", domain.ErrInvalidConfig)
			}
			if err := os.MkdirAll(cfg.SpoolDir, 0o700); err != nil {
				return fmt.Errorf("create spool dir: %w", err)
			}

			ctx, cancel := signalContext()
			defer cancel()

			spool := fsAdapter.NewSpool(cfg.SpoolDir)
			gw := newGateway(cfg)

			log := cliconfig.Logger()
			log.Info().
				Str("spool", spool.Dir()).
				Str("url", gw.URL()).
				Bool("once", cfg.Once).
				Msg("draining spool")

			logger := logAdapter.NewZerologAdapterWithLogger(log)
			w := app.NewSpoolWatcher(app.WatcherConfig{
				Dir:          spool.Dir(),
				PollInterval: cfg.PollInterval,
				Once:         cfg.Once,
			}, spool, gw, logger)

			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "drain the spool at least this often (0 disables)")
	cmd.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "drain the spool once and exit")
	return cmd
}
