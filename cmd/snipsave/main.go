// snipsave: saves Snip & Sketch screenshots from the clipboard to disk.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/snipsave/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "snipsave",
		Short: "Save clipboard screenshots to disk automatically",
		Long: `snipsave watches the clipboard. When Snip & Sketch (or the Snipping Tool)
puts a screenshot on it, snipsave writes the image to the screenshots
directory unless it is identical to the most recent file there.

Run "snipsave run" to start watching. Use "snipsave set-dir" and
"snipsave open" to change or browse the output directory.

Config file search order (first found wins):
  $HOME/.config/snipsave/snipsave.toml
  path supplied via --config

All flags can be set via SNIPSAVE_<FLAG> env vars or config-file keys.
User settings (output directory, auto-start) live in a separate
settings.toml, see "snipsave run --help".`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newStatusCmd(),
		newOpenCmd(),
		newSetDirCmd(),
		newAutostartCmd(),
		newListCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snipsave %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string, w io.Writer) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level, w)
}
