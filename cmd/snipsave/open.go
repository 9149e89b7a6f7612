package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newOpenCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "open",
		Short:   "Open the screenshots directory in the file manager",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSettings(v)
			if err != nil {
				return err
			}
			dir, err := screenshotsDir(store)
			if err != nil {
				return err
			}
			target := existingParent(dir)
			if target != dir {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s does not exist yet, opening %s\n", dir, target)
			}
			return browse(target)
		},
	}
	addSettingsFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

// existingParent walks up from path to the first directory that exists, so
// a deleted output directory still opens somewhere sensible.
func existingParent(path string) string {
	cur := filepath.Clean(path)
	for {
		if fi, err := os.Stat(cur); err == nil && fi.IsDir() {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur
		}
		cur = parent
	}
}

func browse(dir string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		c = exec.Command("explorer", dir)
	case "darwin":
		c = exec.Command("open", dir)
	default:
		c = exec.Command("xdg-open", dir)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("open %s: %w", dir, err)
	}
	// explorer exits non-zero even on success; don't wait on it.
	return c.Process.Release()
}
