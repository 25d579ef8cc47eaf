package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/downstage/downstage-go"
	"github.com/downstage/downstage-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagAccount    string
	flagFilesystem string
	flagDNSSuffix  string
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
var resolvedCfg *config.Config

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "downstage",
		Short:   "ADLS Gen2 CLI client",
		Long:    "A filesystem-style CLI for Azure Data Lake Storage Gen2.",
		Version: version,
		// Silence cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagAccount, "account", "", "storage account name")
	cmd.PersistentFlags().StringVar(&flagFilesystem, "filesystem", "", "filesystem identifier")
	cmd.PersistentFlags().StringVar(&flagDNSSuffix, "dns-suffix", "", "storage DNS suffix")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newTouchCmd())
	cmd.AddCommand(newWriteCmd())
	cmd.AddCommand(newCatCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newRmdirCmd())
	cmd.AddCommand(newStatCmd())

	return cmd
}

// loadConfig resolves the effective configuration: config file first (when
// present), then flag overrides. Flags alone are enough — the config file
// is optional when --account and --filesystem are both given.
func loadConfig() error {
	cfg := &config.Config{}

	path := flagConfigPath
	if path == "" {
		path = config.EnvConfigPath()
	}

	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				path = defaultPath
			}
		}
	}

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		cfg = loaded
	}

	if flagAccount != "" {
		cfg.AccountName = flagAccount
	}

	if flagFilesystem != "" {
		cfg.FilesystemID = flagFilesystem
	}

	if flagDNSSuffix != "" {
		cfg.DNSSuffix = flagDNSSuffix
	}

	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = config.DefaultTimeoutSeconds
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger from the resolved config and CLI
// flags. Config-file log level is the baseline; --verbose and --quiet win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newFileSystem builds the downstage client from the resolved config and
// environment credentials.
func newFileSystem(ctx context.Context) (*downstage.FileSystem, error) {
	creds, err := config.ReadCredentials()
	if err != nil {
		return nil, err
	}

	return downstage.New(ctx, downstage.Config{
		AccountName:  resolvedCfg.AccountName,
		FilesystemID: resolvedCfg.FilesystemID,
		DNSSuffix:    resolvedCfg.DNSSuffix,
		Credentials:  creds,
		HTTPClient:   &http.Client{Timeout: time.Duration(resolvedCfg.TimeoutSeconds) * time.Second},
		Logger:       buildLogger(),
	})
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
