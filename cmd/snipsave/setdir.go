package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/settings"
)

func newSetDirCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "set-dir <path>",
		Short: "Change the screenshots directory",
		Long: `Stores <path> as paths.screenshots in settings.toml, creating the directory.
A running daemon picks the change up with the next screenshot.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(v)
			if err != nil {
				return err
			}
			dir, err := setScreenshotsDir(store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "screenshots will be saved to %s\n", dir)
			return nil
		},
	}
	addSettingsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func setScreenshotsDir(store *settings.Store, path string) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	if err := store.Write(func(s *settings.Settings) { s.Paths.Screenshots = dir }); err != nil {
		return "", err
	}
	return dir, nil
}
