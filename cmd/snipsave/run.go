package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipsave/internal/archive"
	"go.klb.dev/snipsave/internal/capture"
	"go.klb.dev/snipsave/internal/clip"
	"go.klb.dev/snipsave/internal/debounce"
	"go.klb.dev/snipsave/internal/heuristic"
	"go.klb.dev/snipsave/internal/ipc"
	"go.klb.dev/snipsave/internal/retry"
	"go.klb.dev/snipsave/internal/settings"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the clipboard and save screenshots",
		Long: `Watches the clipboard until interrupted. Only one instance runs per user;
a second "run" reports the running one and exits.

Screenshots go to paths.screenshots in settings.toml, which is created with
defaults on first use:
  <user config dir>/snip-and-autosave/settings.toml

Precedence (lowest → highest): defaults → config file → SNIPSAVE_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.Duration("debounce", debounce.DefaultWindow, "ignore clipboard updates this close to the previous one")
	f.Duration("settle", capture.DefaultSettle, "pause before reading the clipboard")
	f.Int("acquire-attempts", retry.DefaultAttempts, "clipboard open attempts")
	f.Duration("acquire-interval", retry.DefaultInterval, "pause between clipboard open attempts")
	f.String("process", defaultProcess(), "clipboard owner executable that marks a screenshot (empty disables the check)")
	f.Bool("require-format", true, "also require a bitmap format on the clipboard")
	f.String("format", string(archive.FormatPNG), "image format: png|bmp")
	addSettingsFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// defaultProcess is svchost.exe on Windows. Other platforms cannot name the
// clipboard owner, so the check is off.
func defaultProcess() string {
	if runtime.GOOS == "windows" {
		return heuristic.DefaultProcessName
	}
	return ""
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	if parent == nil {
		parent = context.Background()
	}
	closeLog, err := setupLogging(v)
	defer closeLog()
	if err != nil {
		return err
	}

	format, err := archive.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}

	store, err := openSettings(v)
	if err != nil {
		return err
	}
	dir, err := screenshotsDir(store)
	if err != nil {
		return err
	}

	inst, err := ipc.Acquire(ipc.SocketPath(), func() string {
		d, _ := screenshotsDir(store)
		return fmt.Sprintf("pid %d saving to %s", os.Getpid(), d)
	})
	switch {
	case errors.Is(err, ipc.ErrAlreadyRunning):
		status, _ := ipc.Query(parent, ipc.SocketPath())
		fmt.Fprintf(os.Stderr, "snipsave is already running (%s)\n", status)
		return nil
	case err != nil:
		slog.Warn("single-instance socket unavailable", "err", err)
	default:
		defer inst.Close()
	}

	if w, err := store.Watch(func(s settings.Settings) {
		slog.Info("settings changed", "dir", s.Paths.Screenshots, "autostart", s.Program.AutoStart)
	}); err != nil {
		slog.Warn("settings file not watched, changes apply on next screenshot", "err", err)
	} else {
		defer w.Close()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := clip.New()
	defer backend.Close()

	heur := heuristic.New(backend, heuristic.Config{
		ProcessName:   v.GetString("process"),
		RequireFormat: v.GetBool("require-format"),
	})
	p := capture.New(capture.Options{
		Backend:   backend,
		Settings:  store,
		Heuristic: heur,
		Debouncer: debounce.New(v.GetDuration("debounce"), nil),
		Settle:    v.GetDuration("settle"),
		Acquire: retry.Policy{
			Attempts: v.GetInt("acquire-attempts"),
			Interval: v.GetDuration("acquire-interval"),
		},
		Format: format,
	})

	slog.Info("snipsave starting",
		"version", Version,
		"dir", dir,
		"settings", store.Path(),
		"process", heur.Config.ProcessName,
		"require_format", heur.Config.RequireFormat,
	)

	err = p.Run(ctx)
	// Writes in flight are given a chance to finish; the OS may still cut
	// them short on logoff.
	p.Wait()
	if errors.Is(err, context.Canceled) {
		slog.Info("snipsave stopped")
		return nil
	}
	return err
}
