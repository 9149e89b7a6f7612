package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/logging"
	"go.klb.dev/snipsave/internal/settings"
)

// bindViper wires a command's flags into a viper instance with the standard
// config file search order and SNIPSAVE_* env var prefix.
//
// Precedence (lowest → highest): defaults → config file → SNIPSAVE_* env vars → flags
func bindViper(cmd *cobra.Command, v *viper.Viper) error {
	configFlag, _ := cmd.Flags().GetString("config")
	if configFlag != "" {
		v.SetConfigFile(configFlag)
	} else {
		v.SetConfigName("snipsave")
		v.SetConfigType("toml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(fmt.Sprintf("%s/.config/snipsave", home))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("SNIPSAVE")
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-background", false, "run interactively: tinter logs + debug level")
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default: info for service, debug for interactive)")
	cmd.Flags().String("log-file", "", "append logs to this file instead of stderr")
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addSettingsFlag adds the --settings flag to a command.
func addSettingsFlag(cmd *cobra.Command) {
	cmd.Flags().String("settings", "", "path to settings.toml (default: <user config dir>/snip-and-autosave/settings.toml)")
}

// setupLogging reads logging flags from viper and configures slog. The
// returned func closes the log file, if any.
func setupLogging(v *viper.Viper) (func(), error) {
	var (
		w        io.Writer = os.Stderr
		closeLog           = func() {}
	)
	if path := v.GetString("log-file"); path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return closeLog, err
		}
		w, closeLog = f, func() { _ = f.Close() }
	}
	interactive := v.GetBool("no-background") || logging.IsTTY(w)
	resolveLogging(interactive, v.GetString("log-format"), v.GetString("log-level"), w)
	return closeLog, nil
}

// openSettings returns the settings store named by --settings, or the
// default one.
func openSettings(v *viper.Viper) (*settings.Store, error) {
	path := v.GetString("settings")
	if path == "" {
		var err error
		if path, err = settings.DefaultPath(); err != nil {
			return nil, err
		}
	}
	slog.Debug("settings file", "path", path)
	return settings.NewStore(path), nil
}

// screenshotsDir loads settings and returns the output directory.
func screenshotsDir(store *settings.Store) (string, error) {
	s, err := store.Get()
	if err != nil {
		return "", err
	}
	return s.Paths.Screenshots, nil
}
